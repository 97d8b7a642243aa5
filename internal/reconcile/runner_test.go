package reconcile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/northlane/feedsync/internal/feed"
	"github.com/northlane/feedsync/internal/models"
)

func feedServer(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRunner(store Store) *Runner {
	fetcher := feed.NewFetcher(&http.Client{Timeout: 5 * time.Second}, nil)
	executor := NewExecutor(store, feed.FallbackToProductID)
	return NewRunner(fetcher, store, executor, 0.5)
}

func TestRunner_SuccessfulRun(t *testing.T) {
	srv := feedServer(t, "application/json", `{"products": [
		{"id": "a", "title": "Alpha", "price": "10"},
		{"id": "b", "title": "Beta", "price": "20"}
	]}`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	source.Status = models.DataSourceError // prior failure must be cleared
	msg := "old failure"
	source.ErrorMessage = &msg
	store.addSource(source)

	start := time.Now().UTC()
	report, err := newTestRunner(store).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 2 || report.Updated != 0 || report.Failed != 0 {
		t.Errorf("Unexpected report: %s", report)
	}

	updated := store.sources[source.ID]
	if updated.Status != models.DataSourceActive {
		t.Errorf("Expected status active after success, got %s", updated.Status)
	}
	if updated.ErrorMessage != nil {
		t.Errorf("Expected error message cleared, got %q", *updated.ErrorMessage)
	}
	if updated.LastFetchedAt == nil || updated.LastFetchedAt.Before(start) {
		t.Errorf("Expected last_fetched_at >= run start, got %v", updated.LastFetchedAt)
	}

	if len(store.runs) != 1 {
		t.Fatalf("Expected one run ledger row, got %d", len(store.runs))
	}
	if store.runs[0].Status != models.SyncRunSuccess {
		t.Errorf("Expected success run record, got %s", store.runs[0].Status)
	}
}

func TestRunner_IdempotentSecondRun(t *testing.T) {
	srv := feedServer(t, "application/json", `[
		{"id": "a", "title": "Alpha"},
		{"id": "b", "title": "Beta"},
		{"id": "c", "title": "Gamma"}
	]`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	runner := newTestRunner(store)
	if _, err := runner.Run(context.Background(), source); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	report, err := runner.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if report.Created != 0 || report.Updated != 3 {
		t.Errorf("Second run should only update: %s", report)
	}

	products, variants, mappings := store.counts()
	if products != 3 || variants != 3 || mappings != 3 {
		t.Errorf("Second run created rows: %d/%d/%d", products, variants, mappings)
	}
}

func TestRunner_FetchFailureMarksSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	_, err := newTestRunner(store).Run(context.Background(), source)
	if err == nil {
		t.Fatal("Expected run error for HTTP 500 feed")
	}
	var fetchErr *feed.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *feed.FetchError, got %T", err)
	}

	updated := store.sources[source.ID]
	if updated.Status != models.DataSourceError {
		t.Errorf("Expected status error, got %s", updated.Status)
	}
	if updated.ErrorMessage == nil || !strings.Contains(*updated.ErrorMessage, "500") {
		t.Errorf("Expected error message with HTTP status, got %v", updated.ErrorMessage)
	}
	if updated.LastFetchedAt == nil {
		t.Error("last_fetched_at must be updated even on failure")
	}

	products, variants, mappings := store.counts()
	if products+variants+mappings != 0 {
		t.Errorf("Fetch failure must not write catalog rows, got %d/%d/%d", products, variants, mappings)
	}
}

func TestRunner_SkipDoesNotAbortOthers(t *testing.T) {
	srv := feedServer(t, "application/json", `[
		{"id": "before", "title": "Before"},
		{"title": "no external id at all"},
		{"id": "after", "title": "After"}
	]`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	report, err := newTestRunner(store).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 2 || report.Skipped != 1 {
		t.Errorf("Expected 2 created + 1 skipped: %s", report)
	}

	if _, ok := store.mappings[mappingKey(source.Identifier, "before", "before")]; !ok {
		t.Error("Item before the malformed one was not processed")
	}
	if _, ok := store.mappings[mappingKey(source.Identifier, "after", "after")]; !ok {
		t.Error("Item after the malformed one was not processed")
	}
	if _, _, mappings := store.counts(); mappings != 2 {
		t.Errorf("Skipped item must not appear in mapping table, got %d mappings", mappings)
	}

	// Skipped items do not count toward the failure ratio.
	if store.sources[source.ID].Status != models.DataSourceActive {
		t.Error("Skip-only run must finish active")
	}
}

func TestRunner_FailureRatioExceeded(t *testing.T) {
	srv := feedServer(t, "application/json", `[
		{"id": "a"}, {"id": "b"}, {"id": "c"}
	]`)

	store := newMemStore()
	store.createErr = errStoreDown
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	report, err := newTestRunner(store).Run(context.Background(), source)
	if err == nil {
		t.Fatal("Expected run-level failure when every item fails")
	}
	if report.Failed != 3 {
		t.Errorf("Expected 3 failed items, got %d", report.Failed)
	}

	updated := store.sources[source.ID]
	if updated.Status != models.DataSourceError {
		t.Errorf("Expected status error, got %s", updated.Status)
	}
	if updated.ErrorMessage == nil || !strings.Contains(*updated.ErrorMessage, "3 of 3") {
		t.Errorf("Expected failure summary in message, got %v", updated.ErrorMessage)
	}
}

func TestRunner_FailuresBelowThresholdStillSucceed(t *testing.T) {
	// One pre-existing mapping whose update will fail, plus three fresh
	// creates that succeed: 1 of 4 attempted is under the 0.5 threshold.
	srv := feedServer(t, "application/json", `[
		{"id": "broken", "title": "Broken"},
		{"id": "x"}, {"id": "y"}, {"id": "z"}
	]`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	runner := newTestRunner(store)

	// Seed the "broken" mapping so the item routes to UPDATE, then make
	// updates fail.
	exec := NewExecutor(store, feed.FallbackToProductID)
	if result := exec.ProcessItem(context.Background(), source, feed.Item{"id": "broken"}); result.Outcome != OutcomeCreated {
		t.Fatalf("Seed create failed: %s", result.Outcome)
	}
	store.updateErr = errStoreDown

	report, err := runner.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run should tolerate failures under the threshold: %v", err)
	}
	if report.Failed != 1 || report.Created != 3 {
		t.Errorf("Unexpected report: %s", report)
	}
	if store.sources[source.ID].Status != models.DataSourceActive {
		t.Error("Run under failure threshold must finish active")
	}
}

func TestRunner_EmptyFeedIsSuccess(t *testing.T) {
	srv := feedServer(t, "application/json", `{"products": []}`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	report, err := newTestRunner(store).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Empty feed must be a no-op success: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("Expected 0 items, got %d", report.Total)
	}
	if store.sources[source.ID].Status != models.DataSourceActive {
		t.Error("Empty feed run must finish active")
	}
}

func TestRunner_XMLFeedEndToEnd(t *testing.T) {
	srv := feedServer(t, "application/xml", `<?xml version="1.0"?>
<rss><channel>
  <item><id>x1</id><title>XML One</title><price>5.00</price></item>
  <item><id>x2</id><title>XML Two</title><price>6.00</price></item>
</channel></rss>`)

	store := newMemStore()
	source := testSource()
	source.FeedURL = srv.URL
	store.addSource(source)

	report, err := newTestRunner(store).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("XML run failed: %v", err)
	}
	if report.Created != 2 {
		t.Errorf("Expected 2 created from XML feed: %s", report)
	}

	mapping, ok := store.mappings[mappingKey(source.Identifier, "x1", "x1")]
	if !ok {
		t.Fatal("Expected mapping for XML item x1")
	}
	product := store.products[mapping.InternalProductID]
	if product.Title != "XML One" {
		t.Errorf("Expected XML title mapped, got %q", product.Title)
	}
	variant := store.variants[mapping.InternalVariantID]
	if variant.Price != 5 {
		t.Errorf("Expected XML price parsed, got %v", variant.Price)
	}
}

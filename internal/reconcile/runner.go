package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/northlane/feedsync/internal/feed"
	"github.com/northlane/feedsync/internal/models"
)

// Report summarizes one reconciliation run for a single data source.
type Report struct {
	Source  string
	Total   int
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (r Report) String() string {
	return fmt.Sprintf("%d items: %d created, %d updated, %d skipped, %d failed",
		r.Total, r.Created, r.Updated, r.Skipped, r.Failed)
}

// Runner drives one end-to-end reconciliation: fetch, normalize, the
// sequential per-item loop, and the terminal data-source status write.
type Runner struct {
	fetcher      *feed.Fetcher
	store        Store
	executor     *Executor
	failureRatio float64
	now          func() time.Time
}

// NewRunner wires the run pipeline. failureRatio is the fraction of
// attempted (non-skipped) items that may fail before the whole run is
// declared failed; values outside (0,1] fall back to 0.5.
func NewRunner(fetcher *feed.Fetcher, store Store, executor *Executor, failureRatio float64) *Runner {
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.5
	}
	return &Runner{
		fetcher:      fetcher,
		store:        store,
		executor:     executor,
		failureRatio: failureRatio,
		now:          time.Now,
	}
}

// Run reconciles one data source. The returned error reflects run-level
// failure (fetch/format error or failure ratio exceeded); item-level detail
// is in the report. The data-source status row is written exactly once per
// run, on every path, and last_fetched_at always moves forward.
func (r *Runner) Run(ctx context.Context, source models.DataSource) (Report, error) {
	startedAt := r.now().UTC()
	report := Report{Source: source.Identifier}

	payload, err := r.fetcher.Fetch(ctx, source.FeedURL)
	if err != nil {
		log.Printf("❌ Sync [%s]: fetch failed: %v", source.Identifier, err)
		r.finish(ctx, source, report, startedAt, err)
		return report, err
	}

	items := feed.Normalize(payload)
	report.Total = len(items)

	// Items are processed strictly sequentially, in feed order. Failures
	// are accumulated instead of aborting the loop so one bad item cannot
	// block everything behind it.
	for _, item := range items {
		result := r.executor.ProcessItem(ctx, source, item)
		switch result.Outcome {
		case OutcomeCreated:
			report.Created++
		case OutcomeUpdated:
			report.Updated++
		case OutcomeSkipped:
			report.Skipped++
			log.Printf("⏭️  Sync [%s]: skipping item without external id", source.Identifier)
		case OutcomeFailed:
			report.Failed++
			log.Printf("❌ Sync [%s]: item %s failed: %v", source.Identifier, result.ExternalProductID, result.Err)
		}
	}

	var runErr error
	attempted := report.Created + report.Updated + report.Failed
	if attempted > 0 && float64(report.Failed)/float64(attempted) > r.failureRatio {
		runErr = fmt.Errorf("sync %s: %d of %d items failed", source.Identifier, report.Failed, attempted)
	}

	r.finish(ctx, source, report, startedAt, runErr)

	if runErr != nil {
		log.Printf("❌ Sync [%s]: run failed: %s", source.Identifier, report)
		return report, runErr
	}
	log.Printf("✅ Sync [%s]: %s", source.Identifier, report)
	return report, nil
}

// finish records the terminal run state: the data-source status write that
// callers observe, plus the audit ledger row.
func (r *Runner) finish(ctx context.Context, source models.DataSource, report Report, startedAt time.Time, runErr error) {
	finishedAt := r.now().UTC()

	status := models.DataSourceActive
	runStatus := models.SyncRunSuccess
	var message *string
	if runErr != nil {
		status = models.DataSourceError
		runStatus = models.SyncRunError
		msg := runErr.Error()
		message = &msg
	}

	if err := r.store.FinishSource(ctx, source.ID, status, message, finishedAt); err != nil {
		log.Printf("⚠️  Sync [%s]: failed to record source status: %v", source.Identifier, err)
	}

	run := &models.SyncRun{
		DataSourceID: source.ID,
		Status:       runStatus,
		ErrorMessage: message,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		ItemsTotal:   report.Total,
		ItemsCreated: report.Created,
		ItemsUpdated: report.Updated,
		ItemsSkipped: report.Skipped,
		ItemsFailed:  report.Failed,
	}
	if err := r.store.RecordRun(ctx, run); err != nil {
		log.Printf("⚠️  Sync [%s]: failed to record run history: %v", source.Identifier, err)
	}
}

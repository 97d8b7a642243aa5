package reconcile

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/northlane/feedsync/internal/feed"
	"github.com/northlane/feedsync/internal/models"
)

// Outcome classifies what happened to one feed item.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	// OutcomeSkipped marks an item with no derivable external id. Skipping
	// is a deliberate permissive policy, not an error: malformed items must
	// not abort the run.
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ItemResult is the per-item reconciliation outcome.
type ItemResult struct {
	Outcome           Outcome
	ExternalProductID string
	ExternalVariantID string
	Err               error
}

// Executor applies one feed item to the catalog: resolve the external
// identity against the mapping table, then update the mapped rows or create
// product, variant and mapping together.
type Executor struct {
	store    Store
	strategy feed.VariantIdentityStrategy
}

// NewExecutor builds an executor with the given variant identity strategy.
func NewExecutor(store Store, strategy feed.VariantIdentityStrategy) *Executor {
	return &Executor{store: store, strategy: strategy}
}

// ProcessItem reconciles a single item for the given source. Items without
// an external product id are skipped; all persistence failures are reported
// in the result rather than panicking the loop.
func (e *Executor) ProcessItem(ctx context.Context, source models.DataSource, item feed.Item) ItemResult {
	externalProductID, ok := item.ExternalProductID()
	if !ok {
		return ItemResult{Outcome: OutcomeSkipped}
	}

	externalVariantID, ok := item.ExternalVariantID(e.strategy)
	if !ok {
		// Only reachable under ExplicitOnly; treated like a missing id.
		return ItemResult{Outcome: OutcomeSkipped, ExternalProductID: externalProductID}
	}

	result := ItemResult{
		ExternalProductID: externalProductID,
		ExternalVariantID: externalVariantID,
	}

	mapping, err := e.store.FindMapping(ctx, source.Identifier, externalProductID, externalVariantID)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = &LookupError{
			Source:            source.Identifier,
			ExternalProductID: externalProductID,
			ExternalVariantID: externalVariantID,
			Err:               err,
		}
		return result
	}

	if mapping != nil {
		return e.update(ctx, source, item, mapping, result)
	}
	return e.create(ctx, source, item, result)
}

func (e *Executor) update(ctx context.Context, source models.DataSource, item feed.Item, mapping *models.ExternalProductMapping, result ItemResult) ItemResult {
	if err := e.store.UpdateProduct(ctx, mapping.InternalProductID, productFields(item)); err != nil {
		return failed(result, "update", source.Identifier, err)
	}
	if err := e.store.UpdateVariant(ctx, mapping.InternalVariantID, variantFields(item)); err != nil {
		return failed(result, "update", source.Identifier, err)
	}
	// The mapping row itself stays untouched: raw_data keeps the first-seen
	// snapshot of the item.
	result.Outcome = OutcomeUpdated
	return result
}

func (e *Executor) create(ctx context.Context, source models.DataSource, item feed.Item, result ItemResult) ItemResult {
	rawData, err := json.Marshal(item)
	if err != nil {
		return failed(result, "create", source.Identifier, err)
	}

	product := &models.Product{
		ID:              uuid.New(),
		Title:           item.Title(),
		Handle:          item.Handle(),
		Status:          item.Status(),
		DescriptionHTML: item.DescriptionHTML(),
		Vendor:          item.Vendor(),
		ProductType:     item.ProductType(),
	}
	variant := &models.ProductVariant{
		ID:             uuid.New(),
		Title:          item.Title(),
		SKU:            item.SKU(),
		Price:          item.Price(),
		CompareAtPrice: item.CompareAtPrice(),
	}
	mapping := &models.ExternalProductMapping{
		ID:                 uuid.New(),
		ExternalSourceName: source.Identifier,
		ExternalProductID:  result.ExternalProductID,
		ExternalVariantID:  result.ExternalVariantID,
		RawData:            rawData,
	}

	err = e.store.CreateCatalogEntry(ctx, product, variant, mapping)
	if err == nil {
		result.Outcome = OutcomeCreated
		return result
	}

	if IsDuplicateKey(err) {
		// Lost the race against an overlapping run for the same source: the
		// mapping now exists, so re-read it and route the item to the
		// update path instead of surfacing the constraint error.
		existing, lookupErr := e.store.FindMapping(ctx, source.Identifier, result.ExternalProductID, result.ExternalVariantID)
		if lookupErr == nil && existing != nil {
			return e.update(ctx, source, item, existing, result)
		}
	}

	return failed(result, "create", source.Identifier, err)
}

func failed(result ItemResult, op, source string, err error) ItemResult {
	result.Outcome = OutcomeFailed
	result.Err = &PersistError{
		Op:                op,
		Source:            source,
		ExternalProductID: result.ExternalProductID,
		Err:               err,
	}
	return result
}

func productFields(item feed.Item) map[string]any {
	return map[string]any{
		"title":            item.Title(),
		"handle":           item.Handle(),
		"status":           item.Status(),
		"description_html": item.DescriptionHTML(),
		"vendor":           item.Vendor(),
		"product_type":     item.ProductType(),
	}
}

func variantFields(item feed.Item) map[string]any {
	return map[string]any{
		"title":            item.Title(),
		"sku":              item.SKU(),
		"price":            item.Price(),
		"compare_at_price": item.CompareAtPrice(),
	}
}

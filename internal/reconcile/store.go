package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/northlane/feedsync/internal/models"
)

// Store is the persistence surface the reconciliation pipeline runs
// against. It is satisfied by the GORM implementation in production and by
// an in-memory fake in tests, so the per-item logic stays deterministic.
type Store interface {
	// ActiveSources returns every data source with status active.
	ActiveSources(ctx context.Context) ([]models.DataSource, error)

	// SourceByID loads one data source regardless of status.
	SourceByID(ctx context.Context, id uuid.UUID) (*models.DataSource, error)

	// FindMapping returns the mapping for the exact external identity tuple,
	// or nil when no reconciliation happened for it yet.
	FindMapping(ctx context.Context, sourceName, externalProductID, externalVariantID string) (*models.ExternalProductMapping, error)

	// CreateCatalogEntry inserts product, variant and mapping atomically.
	// A duplicate-mapping failure must surface as gorm.ErrDuplicatedKey (or
	// an error wrapping it) and leave no partial rows behind.
	CreateCatalogEntry(ctx context.Context, product *models.Product, variant *models.ProductVariant, mapping *models.ExternalProductMapping) error

	// UpdateProduct applies field updates to an existing product.
	UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// UpdateVariant applies field updates to an existing variant.
	UpdateVariant(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// FinishSource records the terminal state of one run on the data source
	// row: status, error message (nil clears it) and the fetch timestamp.
	FinishSource(ctx context.Context, id uuid.UUID, status models.DataSourceStatus, errorMessage *string, fetchedAt time.Time) error

	// RecordRun appends one row to the run ledger.
	RecordRun(ctx context.Context, run *models.SyncRun) error

	// RunsForSource lists recent runs for a source, newest first.
	RunsForSource(ctx context.Context, sourceID uuid.UUID, limit int) ([]models.SyncRun, error)
}

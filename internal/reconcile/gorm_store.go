package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/northlane/feedsync/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of PostgreSQL via GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle as a reconciliation store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveSources(ctx context.Context) ([]models.DataSource, error) {
	var sources []models.DataSource
	err := s.db.WithContext(ctx).
		Where("status = ?", models.DataSourceActive).
		Order("identifier").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (s *GormStore) SourceByID(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	var source models.DataSource
	err := s.db.WithContext(ctx).First(&source, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (s *GormStore) FindMapping(ctx context.Context, sourceName, externalProductID, externalVariantID string) (*models.ExternalProductMapping, error) {
	var mapping models.ExternalProductMapping
	err := s.db.WithContext(ctx).
		Where("external_source_name = ? AND external_product_id = ? AND external_variant_id = ?",
			sourceName, externalProductID, externalVariantID).
		Take(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateCatalogEntry writes product, variant and mapping in one transaction
// so a failure on any of the three leaves no orphan rows behind.
func (s *GormStore) CreateCatalogEntry(ctx context.Context, product *models.Product, variant *models.ProductVariant, mapping *models.ExternalProductMapping) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		variant.ProductID = product.ID
		if err := tx.Create(variant).Error; err != nil {
			return err
		}
		mapping.InternalProductID = product.ID
		mapping.InternalVariantID = variant.ID
		return tx.Create(mapping).Error
	})
}

func (s *GormStore) UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *GormStore) UpdateVariant(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *GormStore) FinishSource(ctx context.Context, id uuid.UUID, status models.DataSourceStatus, errorMessage *string, fetchedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.DataSource{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"error_message":   errorMessage,
			"last_fetched_at": fetchedAt,
		}).Error
}

func (s *GormStore) RecordRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *GormStore) RunsForSource(ctx context.Context, sourceID uuid.UUID, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).
		Where("data_source_id = ?", sourceID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation, in
// either GORM's translated form or the raw pgx error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/northlane/feedsync/internal/models"
	"gorm.io/gorm"
)

// memStore is an in-memory Store for deterministic tests. It enforces the
// mapping unique constraint the way PostgreSQL does, returning
// gorm.ErrDuplicatedKey so the executor's race handling is exercised.
type memStore struct {
	mu       sync.Mutex
	sources  map[uuid.UUID]models.DataSource
	products map[uuid.UUID]models.Product
	variants map[uuid.UUID]models.ProductVariant
	mappings map[string]models.ExternalProductMapping
	runs     []models.SyncRun

	activeSourcesErr error
	findMappingErr   error
	updateErr        error
	createErr        error

	// hideMappingOnce makes FindMapping miss once for the given identity,
	// simulating a concurrent run inserting the mapping between the lookup
	// and the create.
	hideMappingOnce map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		sources:         make(map[uuid.UUID]models.DataSource),
		products:        make(map[uuid.UUID]models.Product),
		variants:        make(map[uuid.UUID]models.ProductVariant),
		mappings:        make(map[string]models.ExternalProductMapping),
		hideMappingOnce: make(map[string]bool),
	}
}

func mappingKey(source, productID, variantID string) string {
	return fmt.Sprintf("%s|%s|%s", source, productID, variantID)
}

func (s *memStore) addSource(source models.DataSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
}

func (s *memStore) ActiveSources(ctx context.Context) ([]models.DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSourcesErr != nil {
		return nil, s.activeSourcesErr
	}
	var active []models.DataSource
	for _, src := range s.sources {
		if src.Status == models.DataSourceActive {
			active = append(active, src)
		}
	}
	return active, nil
}

func (s *memStore) SourceByID(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &src, nil
}

func (s *memStore) FindMapping(ctx context.Context, sourceName, externalProductID, externalVariantID string) (*models.ExternalProductMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findMappingErr != nil {
		return nil, s.findMappingErr
	}
	key := mappingKey(sourceName, externalProductID, externalVariantID)
	if s.hideMappingOnce[key] {
		delete(s.hideMappingOnce, key)
		return nil, nil
	}
	mapping, ok := s.mappings[key]
	if !ok {
		return nil, nil
	}
	return &mapping, nil
}

func (s *memStore) CreateCatalogEntry(ctx context.Context, product *models.Product, variant *models.ProductVariant, mapping *models.ExternalProductMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	key := mappingKey(mapping.ExternalSourceName, mapping.ExternalProductID, mapping.ExternalVariantID)
	if _, exists := s.mappings[key]; exists {
		// Unique violation: transactional create leaves no partial rows.
		return gorm.ErrDuplicatedKey
	}
	variant.ProductID = product.ID
	mapping.InternalProductID = product.ID
	mapping.InternalVariantID = variant.ID
	s.products[product.ID] = *product
	s.variants[variant.ID] = *variant
	s.mappings[key] = *mapping
	return nil
}

func (s *memStore) UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := fields["title"].(string); ok {
		product.Title = title
	}
	if handle, ok := fields["handle"].(string); ok {
		product.Handle = handle
	}
	if status, ok := fields["status"].(string); ok {
		product.Status = status
	}
	if desc, ok := fields["description_html"].(string); ok {
		product.DescriptionHTML = desc
	}
	if vendor, ok := fields["vendor"].(string); ok {
		product.Vendor = vendor
	}
	if ptype, ok := fields["product_type"].(string); ok {
		product.ProductType = ptype
	}
	s.products[id] = product
	return nil
}

func (s *memStore) UpdateVariant(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	variant, ok := s.variants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := fields["title"].(string); ok {
		variant.Title = title
	}
	if sku, ok := fields["sku"].(string); ok {
		variant.SKU = sku
	}
	if price, ok := fields["price"].(float64); ok {
		variant.Price = price
	}
	if cap, ok := fields["compare_at_price"].(*float64); ok {
		variant.CompareAtPrice = cap
	}
	s.variants[id] = variant
	return nil
}

func (s *memStore) FinishSource(ctx context.Context, id uuid.UUID, status models.DataSourceStatus, errorMessage *string, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.sources[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	source.Status = status
	source.ErrorMessage = errorMessage
	source.LastFetchedAt = &fetchedAt
	s.sources[id] = source
	return nil
}

func (s *memStore) RecordRun(ctx context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

func (s *memStore) RunsForSource(ctx context.Context, sourceID uuid.UUID, limit int) ([]models.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SyncRun
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.runs[i].DataSourceID == sourceID {
			out = append(out, s.runs[i])
		}
	}
	return out, nil
}

func (s *memStore) counts() (products, variants, mappings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products), len(s.variants), len(s.mappings)
}

var errStoreDown = errors.New("store unavailable")

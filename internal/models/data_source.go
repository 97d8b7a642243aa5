package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DataSourceStatus is the lifecycle state of a feed subscription.
type DataSourceStatus string

const (
	DataSourceActive   DataSourceStatus = "active"
	DataSourceInactive DataSourceStatus = "inactive"
	DataSourceError    DataSourceStatus = "error"
)

// FeedType classifies what kind of records a feed carries.
type FeedType string

const (
	FeedTypeProduct   FeedType = "product_feed"
	FeedTypeInventory FeedType = "inventory_feed"
	FeedTypePrice     FeedType = "price_feed"
)

// DataSource represents one external feed subscription. Rows are created by
// the importer tool and mutated by the reconciliation run tracker; the
// pipeline never deletes them.
type DataSource struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Identifier         string           `gorm:"type:varchar(255);not null;uniqueIndex" json:"identifier"`
	FeedURL            string           `gorm:"type:varchar(2048);not null" json:"feed_url"`
	FeedType           FeedType         `gorm:"type:varchar(50);not null;default:'product_feed'" json:"feed_type"`
	Status             DataSourceStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ErrorMessage       *string          `gorm:"type:text" json:"error_message,omitempty"`
	LastFetchedAt      *time.Time       `json:"last_fetched_at,omitempty"`
	LastSchemaUpdateAt *time.Time       `json:"last_schema_update_at,omitempty"`
	DetectedSchema     datatypes.JSON   `gorm:"type:jsonb" json:"detected_schema,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (DataSource) TableName() string { return "data_sources" }

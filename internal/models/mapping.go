package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExternalProductMapping ties one (source, external product, external
// variant) identity to internal catalog ids. The composite unique index is
// the sole mechanism distinguishing create from update during
// reconciliation: a row exists exactly when the external item was seen
// before.
//
// RawData keeps the verbatim first-seen feed item for audit and is not
// refreshed on subsequent runs.
type ExternalProductMapping struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InternalProductID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"internal_product_id"`
	InternalVariantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"internal_variant_id"`
	ExternalSourceName string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_external_identity" json:"external_source_name"`
	ExternalProductID  string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_external_identity" json:"external_product_id"`
	ExternalVariantID  string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_external_identity" json:"external_variant_id"`
	RawData            datatypes.JSON `gorm:"type:jsonb" json:"raw_data,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (ExternalProductMapping) TableName() string { return "external_product_mappings" }

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the internal canonical product record.
type Product struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title           string    `gorm:"type:varchar(512);not null" json:"title"`
	Handle          string    `gorm:"type:varchar(512);index" json:"handle"`
	Status          string    `gorm:"type:varchar(50);default:'active'" json:"status"`
	DescriptionHTML string    `gorm:"type:text" json:"description_html"`
	Vendor          string    `gorm:"type:varchar(255)" json:"vendor"`
	ProductType     string    `gorm:"type:varchar(255)" json:"product_type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is a purchasable variant belonging to exactly one product.
type ProductVariant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Title          string    `gorm:"type:varchar(512)" json:"title"`
	SKU            string    `gorm:"type:varchar(255);index" json:"sku"`
	Price          float64   `gorm:"type:numeric(12,2)" json:"price"`
	CompareAtPrice *float64  `gorm:"type:numeric(12,2)" json:"compare_at_price,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ProductVariant) TableName() string { return "product_variants" }

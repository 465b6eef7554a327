package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetType is a reference row keyed by its human-entered type name
// ("Laptop", "Vehicle"). Lookup is a case-sensitive exact match; the unique
// index backs the get-or-create path in the reference service.
type AssetType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TypeName  string    `json:"type_name" gorm:"not null;size:255;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// AssetBrand is a reference row keyed by its brand name ("Dell").
type AssetBrand struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BrandName string    `json:"brand_name" gorm:"not null;size:255;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets the creation timestamp
func (t *AssetType) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return nil
}

// BeforeCreate sets the creation timestamp
func (b *AssetBrand) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	return nil
}

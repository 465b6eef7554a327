package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit action types
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AssetHistory is one append-only audit row. Old/new values are full JSON
// snapshots of the asset, not diffs. AssetID is a plain indexed column with
// no foreign key on purpose: a DELETE entry has to outlive the asset it
// describes, so nothing may cascade onto this table.
type AssetHistory struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	AssetID    uint           `json:"asset_id" gorm:"not null;index"`
	ActionType string         `json:"action_type" gorm:"not null;size:10"`
	ChangedBy  uint           `json:"changed_by" gorm:"not null;index"`
	OldValues  datatypes.JSON `json:"old_values,omitempty"`
	NewValues  datatypes.JSON `json:"new_values,omitempty"`
	Notes      string         `json:"notes" gorm:"type:text;default:''"`
	CreatedAt  time.Time      `json:"created_at"`

	// Relations
	Actor *User `json:"actor,omitempty" gorm:"foreignKey:ChangedBy"`
}

// BeforeCreate sets the creation timestamp
func (h *AssetHistory) BeforeCreate(tx *gorm.DB) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return nil
}

package services

import (
	"encoding/json"

	"assettrack-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryService appends audit rows and reads them back for display.
// Rows are only ever inserted; nothing in the codebase updates or deletes
// them, and the table carries no foreign key that could cascade.
type HistoryService struct{}

// NewHistoryService creates the audit log.
func NewHistoryService() *HistoryService {
	return &HistoryService{}
}

// snapshot serializes a full record state for an audit row. A nil value
// (no prior state on CREATE, no next state on DELETE) stays NULL.
func snapshot(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// Append inserts one audit row inside the caller's transaction.
func (s *HistoryService) Append(tx *gorm.DB, assetID uint, actionType string, actorID uint, oldValues, newValues interface{}, note string) error {
	oldSnapshot, err := snapshot(oldValues)
	if err != nil {
		return &TransactionError{Op: "audit snapshot", Err: err}
	}
	newSnapshot, err := snapshot(newValues)
	if err != nil {
		return &TransactionError{Op: "audit snapshot", Err: err}
	}

	entry := models.AssetHistory{
		AssetID:    assetID,
		ActionType: actionType,
		ChangedBy:  actorID,
		OldValues:  oldSnapshot,
		NewValues:  newSnapshot,
		Notes:      note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return &TransactionError{Op: "audit append", Err: err}
	}
	return nil
}

// ForAsset returns the asset's audit trail newest-first, with the actor
// joined in for display names.
func (s *HistoryService) ForAsset(db *gorm.DB, assetID uint) ([]models.AssetHistory, error) {
	var entries []models.AssetHistory
	err := db.Preload("Actor").
		Where("asset_id = ?", assetID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

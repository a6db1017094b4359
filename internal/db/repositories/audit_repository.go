package repositories

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	gormModels "aero-rhythm/crewops/internal/models/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit row for an assignment mutation. Old and new
// values are serialized snapshots; a nil old value means creation.
func (r *AuditRepository) Append(ctx context.Context, table, recordID, action, actor string, oldValues, newValues any) error {
	oldJSON, err := marshalOrEmpty(oldValues)
	if err != nil {
		return err
	}
	newJSON, err := marshalOrEmpty(newValues)
	if err != nil {
		return err
	}

	row := gormModels.AuditLog{
		Table:     table,
		RecordID:  recordID,
		Action:    action,
		OldValues: oldJSON,
		NewValues: newJSON,
		Actor:     actor,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AuditRepository) ForRecord(ctx context.Context, recordID string) ([]gormModels.AuditLog, error) {
	var rows []gormModels.AuditLog
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("timestamp, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func marshalOrEmpty(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

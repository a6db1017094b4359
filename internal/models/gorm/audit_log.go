package gorm

import "time"

// AuditLog records every assignment mutation: generation, replacement,
// cancellation, status restoration. Old and new values are stored serialized.
type AuditLog struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Table     string    `gorm:"column:table_name"`
	RecordID  string    `gorm:"column:record_id;index"`
	Action    string    `gorm:"column:action"`
	OldValues string    `gorm:"column:old_values;type:text"`
	NewValues string    `gorm:"column:new_values;type:text"`
	Actor     string    `gorm:"column:actor"`
	Timestamp time.Time `gorm:"column:timestamp;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_log"
}

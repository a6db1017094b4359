package gorm

import "time"

type ExplanationRenderState string

const (
	RenderPending  ExplanationRenderState = "pending"
	RenderRendered ExplanationRenderState = "rendered"
	RenderFailed   ExplanationRenderState = "failed"
)

// ExplanationRecord persists the structured explanation for one assignment
// plus the prose rendered asynchronously by the narrative collaborator.
// Structured fields are stored serialized so the row survives schema drift
// in the explanation payload.
type ExplanationRecord struct {
	ID           string                 `gorm:"column:id;primaryKey;type:uuid"`
	AssignmentID string                 `gorm:"column:assignment_id;index"`
	Payload      string                 `gorm:"column:payload;type:text"`
	Confidence   float64                `gorm:"column:confidence"`
	Prose        *string                `gorm:"column:prose;type:text"`
	RenderState  ExplanationRenderState `gorm:"column:render_state;default:pending"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ExplanationRecord) TableName() string {
	return "explanations"
}

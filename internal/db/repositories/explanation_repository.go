package repositories

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aero-rhythm/crewops/internal/models/dtos"
	gormModels "aero-rhythm/crewops/internal/models/gorm"
)

type ExplanationRepository struct {
	db *gorm.DB
}

func NewExplanationRepository(db *gorm.DB) *ExplanationRepository {
	return &ExplanationRepository{db: db}
}

func (r *ExplanationRepository) Create(ctx context.Context, record dtos.ExplanationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	row := gormModels.ExplanationRecord{
		ID:           record.ID,
		AssignmentID: record.AssignmentID,
		Payload:      string(payload),
		Confidence:   record.Confidence,
		RenderState:  gormModels.RenderPending,
	}
	// Explanation ids are derived from assignment ids, so re-running a
	// window reproduces them; the existing row wins.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *ExplanationRepository) Get(ctx context.Context, id string) (*gormModels.ExplanationRecord, error) {
	var row gormModels.ExplanationRecord
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Record deserializes the structured payload stored on a row.
func (r *ExplanationRepository) Record(row *gormModels.ExplanationRecord) (*dtos.ExplanationRecord, error) {
	var record dtos.ExplanationRecord
	if err := json.Unmarshal([]byte(row.Payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// AttachProse stores the rendered narrative. Failed renders keep the row in
// failed state so the structured payload stays servable with a placeholder.
func (r *ExplanationRepository) AttachProse(ctx context.Context, id string, prose *string, state gormModels.ExplanationRenderState) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.ExplanationRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"prose":        prose,
			"render_state": string(state),
		}).Error
}

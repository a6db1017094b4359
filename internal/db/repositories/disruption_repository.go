package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aero-rhythm/crewops/internal/models/entities"
	gormModels "aero-rhythm/crewops/internal/models/gorm"
)

type DisruptionRepository struct {
	db *gorm.DB
}

func NewDisruptionRepository(db *gorm.DB) *DisruptionRepository {
	return &DisruptionRepository{db: db}
}

func (r *DisruptionRepository) Create(ctx context.Context, ev *entities.DisruptionEvent) error {
	row, err := gormModels.FromEntity(ev)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *DisruptionRepository) Get(ctx context.Context, id string) (*entities.DisruptionEvent, error) {
	var row gormModels.DisruptionEvent
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return row.ToEntity()
}

// List returns events newest-first, paginated.
func (r *DisruptionRepository) List(ctx context.Context, limit, offset int) ([]entities.DisruptionEvent, error) {
	var rows []gormModels.DisruptionEvent
	err := r.db.WithContext(ctx).
		Order("detected_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entities.DisruptionEvent, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].ToEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, nil
}

// MarkResolved closes an active event. The transition is terminal and only
// ever set explicitly; resolution never rewrites historical assignments.
func (r *DisruptionRepository) MarkResolved(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.DisruptionEvent{}).
		Where("id = ? AND status = ?", id, string(entities.DisruptionActive)).
		Updates(map[string]any{
			"status":      string(entities.DisruptionResolved),
			"resolved_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

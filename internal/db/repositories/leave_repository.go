package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type LeaveRepository struct {
	db *sqlx.DB
}

func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db}
}

// ApprovedForCrew returns the approved leave requests intersecting the
// window. Pending and rejected requests never reach the evaluator.
func (r *LeaveRepository) ApprovedForCrew(ctx context.Context, crewID string, window entities.TimeWindow) ([]entities.LeaveRequest, error) {
	var leaves []entities.LeaveRequest

	err := r.db.SelectContext(ctx, &leaves, constants.ListApprovedLeaveByCrew,
		crewID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status entities.LeaveStatus) error {
	_, err := r.db.ExecContext(ctx, constants.UpdateLeaveStatus, id, status)
	return err
}

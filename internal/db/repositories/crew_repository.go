package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type CrewRepository struct {
	db *sqlx.DB
}

func NewCrewRepository(db *sqlx.DB) *CrewRepository {
	return &CrewRepository{db}
}

func (r *CrewRepository) GetCrew(ctx context.Context, id string) (*entities.CrewMember, error) {
	var crew entities.CrewMember

	err := r.db.QueryRowxContext(ctx, constants.GetCrewByID, id).StructScan(&crew)
	if err != nil {
		return nil, err
	}

	return &crew, nil
}

func (r *CrewRepository) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	var crew []entities.CrewMember

	if err := r.db.SelectContext(ctx, &crew, constants.ListCrew); err != nil {
		return nil, err
	}

	return crew, nil
}

// UpdateStatus applies an explicit availability change. The version check
// makes the write optimistic; zero rows affected means a concurrent writer
// won and the caller must re-read before retrying.
func (r *CrewRepository) UpdateStatus(ctx context.Context, id string, status entities.CrewStatus, version int) (bool, error) {
	res, err := r.db.ExecContext(ctx, constants.UpdateCrewStatus, id, status, version)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateDutyTotals keeps the rolling duty-hour totals consistent with the
// union of the crew member's active assignments.
func (r *CrewRepository) UpdateDutyTotals(ctx context.Context, id string, weekly, monthly float64, lastRestEnd time.Time, version int) (bool, error) {
	res, err := r.db.ExecContext(ctx, constants.UpdateCrewDutyTotals, id, weekly, monthly, lastRestEnd, version)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db}
}

// RosterTx is the transaction-scoped view handed to Transact callbacks.
// Writes issued through it commit or roll back together.
type RosterTx struct {
	tx *sqlx.Tx
}

// Transact runs fn inside one transaction, rolling back when fn errors.
// Multi-row mutations (release+replace, batch persists, flight cancellation)
// go through here so a failure mid-sequence never leaves partial state.
func (r *RosterRepository) Transact(ctx context.Context, fn func(tx *RosterTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&RosterTx{tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *RosterRepository) Insert(ctx context.Context, a *entities.RosterAssignment) error {
	return insertAssignment(ctx, r.db, a)
}

func (t *RosterTx) Insert(ctx context.Context, a *entities.RosterAssignment) error {
	return insertAssignment(ctx, t.tx, a)
}

func insertAssignment(ctx context.Context, q sqlx.QueryerContext, a *entities.RosterAssignment) error {
	return q.QueryRowxContext(ctx, constants.InsertAssignment,
		a.ID,
		a.CrewID,
		a.FlightID,
		a.DutyType,
		a.Position,
		a.Start,
		a.End,
		a.Status,
		a.Confidence,
		a.Violations,
		a.ExplanationID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *RosterRepository) Get(ctx context.Context, id string) (*entities.RosterAssignment, error) {
	return getAssignment(ctx, r.db, id)
}

func (t *RosterTx) Get(ctx context.Context, id string) (*entities.RosterAssignment, error) {
	return getAssignment(ctx, t.tx, id)
}

func getAssignment(ctx context.Context, q sqlx.QueryerContext, id string) (*entities.RosterAssignment, error) {
	var a entities.RosterAssignment

	err := q.QueryRowxContext(ctx, constants.GetAssignmentByID, id).StructScan(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByWindow returns assignments intersecting the window, paginated,
// ordered by start then id.
func (r *RosterRepository) ListByWindow(ctx context.Context, window entities.TimeWindow, limit, offset int) ([]entities.RosterAssignment, error) {
	var assignments []entities.RosterAssignment

	err := r.db.SelectContext(ctx, &assignments, constants.ListAssignmentsByWindow,
		window.Start, window.End, limit, offset)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// CountByWindow returns how many assignments intersect the window,
// independent of pagination.
func (r *RosterRepository) CountByWindow(ctx context.Context, window entities.TimeWindow) (int, error) {
	var total int

	err := r.db.GetContext(ctx, &total, constants.CountAssignmentsByWindow, window.Start, window.End)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListActiveByCrew returns the crew member's non-cancelled assignments
// ending after the given instant.
func (r *RosterRepository) ListActiveByCrew(ctx context.Context, crewID string, after time.Time) ([]entities.RosterAssignment, error) {
	var assignments []entities.RosterAssignment

	err := r.db.SelectContext(ctx, &assignments, constants.ListActiveAssignmentsByCrew, crewID, after)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListHistoryByCrew returns the non-cancelled assignments intersecting
// [from, to), the window history the constraint evaluator consumes.
func (r *RosterRepository) ListHistoryByCrew(ctx context.Context, crewID string, from, to time.Time) ([]entities.RosterAssignment, error) {
	var assignments []entities.RosterAssignment

	err := r.db.SelectContext(ctx, &assignments, constants.ListAssignmentHistoryByCrew, crewID, from, to)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateStatus transitions an assignment's status with an optimistic version
// check. Assignments are never deleted; cancellation comes through here.
func (r *RosterRepository) UpdateStatus(ctx context.Context, id string, status entities.AssignmentStatus, confidence float64, version int) (bool, error) {
	return updateAssignmentStatus(ctx, r.db, id, status, confidence, version)
}

func (t *RosterTx) UpdateStatus(ctx context.Context, id string, status entities.AssignmentStatus, confidence float64, version int) (bool, error) {
	return updateAssignmentStatus(ctx, t.tx, id, status, confidence, version)
}

func updateAssignmentStatus(ctx context.Context, q sqlx.ExecerContext, id string, status entities.AssignmentStatus, confidence float64, version int) (bool, error) {
	res, err := q.ExecContext(ctx, constants.UpdateAssignmentStatus, id, status, confidence, version)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

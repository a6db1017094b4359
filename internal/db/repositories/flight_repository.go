package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type FlightRepository struct {
	db *sqlx.DB
}

func NewFlightRepository(db *sqlx.DB) *FlightRepository {
	return &FlightRepository{db}
}

func (r *FlightRepository) GetFlight(ctx context.Context, id string) (*entities.Flight, error) {
	var flight entities.Flight

	err := r.db.QueryRowxContext(ctx, constants.GetFlightByID, id).StructScan(&flight)
	if err != nil {
		return nil, err
	}

	if err := r.loadLegs(ctx, &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

// ListByWindow returns every flight whose schedule intersects the window,
// ordered by departure then id for deterministic generation input.
func (r *FlightRepository) ListByWindow(ctx context.Context, window entities.TimeWindow) ([]entities.Flight, error) {
	var flights []entities.Flight

	if err := r.db.SelectContext(ctx, &flights, constants.ListFlightsByWindow, window.Start, window.End); err != nil {
		return nil, err
	}

	for i := range flights {
		if err := r.loadLegs(ctx, &flights[i]); err != nil {
			return nil, err
		}
	}
	return flights, nil
}

func (r *FlightRepository) loadLegs(ctx context.Context, flight *entities.Flight) error {
	return r.db.SelectContext(ctx, &flight.Legs, constants.ListLegsByFlight, flight.ID)
}

package db

import (
	"context"

	"aero-rhythm/crewops/internal/logging"
)

// seedStatements load a small demonstration dataset: a handful of crew across
// all three positions, two flights with legs, and current type ratings for
// the pilots. Inserts are idempotent.
var seedStatements = []string{
	`INSERT INTO crew (id, employee_id, first_name, last_name, position, base_airport,
		seniority_number, license_expiry, medical_expiry, weekly_duty_hours,
		monthly_duty_hours, last_rest_end, status, version)
	VALUES
		('crew-cpt-001', 'EMP1001', 'Anna', 'Keller', 'captain', 'FRA', 12,
			NOW() + INTERVAL '2 years', NOW() + INTERVAL '1 year', 18.5, 76.0,
			NOW() - INTERVAL '14 hours', 'available', 1),
		('crew-cpt-002', 'EMP1002', 'Marco', 'Silva', 'captain', 'FRA', 44,
			NOW() + INTERVAL '18 months', NOW() + INTERVAL '9 months', 31.0, 112.5,
			NOW() - INTERVAL '11 hours', 'available', 1),
		('crew-fo-001', 'EMP2001', 'Priya', 'Nair', 'first_officer', 'FRA', 88,
			NOW() + INTERVAL '3 years', NOW() + INTERVAL '14 months', 12.0, 61.0,
			NOW() - INTERVAL '20 hours', 'available', 1),
		('crew-fo-002', 'EMP2002', 'Tomas', 'Berg', 'first_officer', 'MUC', 101,
			NOW() + INTERVAL '2 years', NOW() + INTERVAL '7 months', 26.5, 98.0,
			NOW() - INTERVAL '12 hours', 'standby', 1),
		('crew-fa-001', 'EMP3001', 'Lena', 'Drexler', 'flight_attendant', 'FRA', 203,
			NOW() + INTERVAL '4 years', NOW() + INTERVAL '2 years', 15.0, 70.5,
			NOW() - INTERVAL '16 hours', 'available', 1),
		('crew-fa-002', 'EMP3002', 'Yusuf', 'Demir', 'flight_attendant', 'FRA', 310,
			NOW() + INTERVAL '4 years', NOW() + INTERVAL '2 years', 22.0, 84.0,
			NOW() - INTERVAL '13 hours', 'available', 1)
	ON CONFLICT (id) DO NOTHING`,

	`INSERT INTO flights (id, flight_number, origin, destination, aircraft_type,
		departure, arrival, required_captains, required_first_officers, required_attendants)
	VALUES
		('flt-ar101', 'AR101', 'FRA', 'LIS', 'A320',
			NOW() + INTERVAL '2 days', NOW() + INTERVAL '2 days 3 hours', 1, 1, 2),
		('flt-ar202', 'AR202', 'FRA', 'ARN', 'A320',
			NOW() + INTERVAL '3 days', NOW() + INTERVAL '3 days 2 hours', 1, 1, 2)
	ON CONFLICT (id) DO NOTHING`,

	`INSERT INTO flight_legs (id, flight_id, sequence, origin, destination, departure, arrival)
	VALUES
		('leg-ar101-1', 'flt-ar101', 1, 'FRA', 'LIS',
			NOW() + INTERVAL '2 days', NOW() + INTERVAL '2 days 3 hours'),
		('leg-ar202-1', 'flt-ar202', 1, 'FRA', 'ARN',
			NOW() + INTERVAL '3 days', NOW() + INTERVAL '3 days 2 hours')
	ON CONFLICT (id) DO NOTHING`,

	`INSERT INTO certifications (id, crew_id, type, aircraft_type, issued_at, expires_at)
	VALUES
		('cert-cpt-001-a320', 'crew-cpt-001', 'type_rating', 'A320',
			NOW() - INTERVAL '2 years', NOW() + INTERVAL '1 year'),
		('cert-cpt-002-a320', 'crew-cpt-002', 'type_rating', 'A320',
			NOW() - INTERVAL '3 years', NOW() + INTERVAL '20 days'),
		('cert-fo-001-a320', 'crew-fo-001', 'type_rating', 'A320',
			NOW() - INTERVAL '1 year', NOW() + INTERVAL '2 years'),
		('cert-fo-002-a320', 'crew-fo-002', 'type_rating', 'A320',
			NOW() - INTERVAL '18 months', NOW() + INTERVAL '6 months')
	ON CONFLICT (id) DO NOTHING`,
}

// LoadSeedData populates the demonstration dataset. Enabled with
// USE_SEED_DATA=true; production deployments never set it.
func LoadSeedData(ctx context.Context) error {
	for _, stmt := range seedStatements {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	logging.Info("Seed data loaded")
	return nil
}

package db

import (
	gormModels "aero-rhythm/crewops/internal/models/gorm"
)

// AutoMigrate creates or updates the tables owned by the GORM layer. The
// sqlx-managed tables (crew, flights, rosters, leave, certifications, keys)
// are provisioned by the SQL migrations in deploy tooling.
func AutoMigrate() error {
	return PgDB.AutoMigrate(
		&gormModels.ExplanationRecord{},
		&gormModels.DisruptionEvent{},
		&gormModels.AuditLog{},
	)
}

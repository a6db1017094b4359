package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type CertificationRepository struct {
	db *sqlx.DB
}

func NewCertificationRepository(db *sqlx.DB) *CertificationRepository {
	return &CertificationRepository{db}
}

func (r *CertificationRepository) ForCrew(ctx context.Context, crewID string) ([]entities.Certification, error) {
	var certs []entities.Certification

	if err := r.db.SelectContext(ctx, &certs, constants.ListCertificationsByCrew, crewID); err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *CertificationRepository) Insert(ctx context.Context, cert *entities.Certification) error {
	if cert.ExpiresAt.Before(cert.IssuedAt) {
		return fmt.Errorf("certification %s: expiry before issue date", cert.ID)
	}

	return r.db.QueryRowxContext(ctx, constants.InsertCertification,
		cert.ID,
		cert.CrewID,
		cert.Type,
		cert.AircraftType,
		cert.IssuedAt,
		cert.ExpiresAt,
	).Scan(&cert.CreatedAt)
}

// ExpiringBetween returns certifications whose expiry falls inside
// [from, to). The expiry sweep job uses this to invalidate eligibility
// entries exactly when a boundary crosses "now".
func (r *CertificationRepository) ExpiringBetween(ctx context.Context, from, to time.Time) ([]entities.Certification, error) {
	var certs []entities.Certification

	if err := r.db.SelectContext(ctx, &certs, constants.ListCertificationsExpiringBetween, from, to); err != nil {
		return nil, err
	}
	return certs, nil
}

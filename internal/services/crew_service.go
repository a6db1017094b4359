package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/engine"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/metrics"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
)

// CrewService handles explicit crew availability changes. A status change is
// the only way a crew member re-enters the eligible pool; nothing in the
// engine flips availability implicitly.
type CrewService struct {
	crew    *repositories.CrewRepository
	audit   *repositories.AuditRepository
	index   *eligibility.Index
	metrics *metrics.MetricsRegistry
	retries int
}

func NewCrewService(
	crew *repositories.CrewRepository,
	audit *repositories.AuditRepository,
	index *eligibility.Index,
	reg *metrics.MetricsRegistry,
	retries int,
) *CrewService {
	return &CrewService{
		crew:    crew,
		audit:   audit,
		index:   index,
		metrics: reg,
		retries: retries,
	}
}

func (s *CrewService) GetCrew(ctx context.Context, id string) (*entities.CrewMember, error) {
	crew, err := s.crew.GetCrew(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return crew, nil
}

func (s *CrewService) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	return s.crew.ListCrew(ctx)
}

// UpdateStatus applies an explicit availability change with an optimistic
// version check and bounded retries, then drops every cached eligibility
// snapshot the crew member appears in.
func (s *CrewService) UpdateStatus(ctx context.Context, id string, req dtos.CrewStatusRequest) (*entities.CrewMember, error) {
	if !req.Status.IsValid() {
		return nil, engine.NewValidationError("status", fmt.Sprintf("unknown crew status %q", req.Status))
	}

	for attempt := 0; ; attempt++ {
		crew, err := s.GetCrew(ctx, id)
		if err != nil {
			return nil, err
		}
		if crew.Status == req.Status {
			return crew, nil
		}

		ok, err := s.crew.UpdateStatus(ctx, id, req.Status, crew.Version)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := s.audit.Append(ctx, "crew", id, "status_change", "api",
				map[string]any{"status": crew.Status},
				map[string]any{"status": req.Status}); err != nil {
				return nil, err
			}
			s.index.InvalidateCrew(id)
			if s.metrics != nil {
				s.metrics.EligibilityInvalidations.Inc()
			}
			logging.Info("Crew status changed",
				"crew_id", id,
				"from", crew.Status,
				"to", req.Status,
			)
			return s.GetCrew(ctx, id)
		}

		if attempt >= s.retries {
			return nil, engine.ErrConflict
		}
		if s.metrics != nil {
			s.metrics.ConflictRetriesTotal.Inc()
		}
	}
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/engine"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/metrics"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
)

// maxWindowAssignments bounds a single windowed roster read.
const maxWindowAssignments = 10000

// rosterWindowTTL keeps the roster-id to window mapping alive long enough for
// optimization passes on recently generated rosters.
const rosterWindowTTL = 24 * time.Hour

// RenderEnqueue hands an explanation id to the asynchronous prose renderer.
// A nil enqueue disables rendering; structured explanations still persist.
type RenderEnqueue func(explanationID string)

// RosterService orchestrates generation runs: it loads engine input, runs the
// generator inside the time budget, persists the outcome under per-crew
// partition locks and keeps the eligibility index and metrics in sync.
type RosterService struct {
	cfg     config.EngineConfig
	gen     *engine.Generator
	index   *eligibility.Index
	store   *EligibilityStore
	rosters *repositories.RosterRepository
	flights *repositories.FlightRepository
	expls   *repositories.ExplanationRepository
	audit   *repositories.AuditRepository
	locks   *engine.PartitionLocks
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
	render  RenderEnqueue
}

func NewRosterService(
	cfg config.EngineConfig,
	gen *engine.Generator,
	index *eligibility.Index,
	store *EligibilityStore,
	rosters *repositories.RosterRepository,
	flights *repositories.FlightRepository,
	expls *repositories.ExplanationRepository,
	audit *repositories.AuditRepository,
	locks *engine.PartitionLocks,
	cache common.CacheInterface,
	reg *metrics.MetricsRegistry,
	render RenderEnqueue,
) *RosterService {
	return &RosterService{
		cfg:     cfg,
		gen:     gen,
		index:   index,
		store:   store,
		rosters: rosters,
		flights: flights,
		expls:   expls,
		audit:   audit,
		locks:   locks,
		cache:   cache,
		metrics: reg,
		render:  render,
	}
}

// GenerateRoster runs one generation pass over the requested window and
// persists the resulting assignments. Existing assignments in the window
// constrain the run; already filled slots are not refilled.
func (s *RosterService) GenerateRoster(ctx context.Context, req dtos.GenerateRosterRequest) (*dtos.RosterGenerationResult, error) {
	window := req.Window()
	if !window.Valid() {
		return nil, engine.NewValidationError("window", "start and end must be set with end after start")
	}

	started := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationBudget)
	defer cancel()

	flights, err := s.flights.ListByWindow(runCtx, window)
	if err != nil {
		return nil, err
	}
	existing, err := s.rosters.ListByWindow(runCtx, window, maxWindowAssignments, 0)
	if err != nil {
		return nil, err
	}

	s.store.ConsumeDegraded()
	result, explanations, err := s.gen.Generate(runCtx, engine.GenerateInput{
		Window:   window,
		Flights:  flights,
		Existing: existing,
	})
	if err != nil {
		return nil, err
	}
	if s.store.ConsumeDegraded() {
		result.Metrics.Degraded = true
	}

	if err := s.persist(ctx, result, explanations); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RostersGeneratedTotal.Inc()
		s.metrics.EngineDuration.WithLabelValues("generate").Observe(time.Since(started).Seconds())
		if result.Metrics.Partial {
			s.metrics.PartialResultsTotal.Inc()
		}
		for _, a := range result.Assignments {
			s.metrics.AssignmentsCreatedTotal.WithLabelValues(string(a.Status)).Inc()
			for _, v := range a.Violations {
				s.metrics.ViolationsDetectedTotal.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
			}
		}
	}

	s.cache.Set(string(constants.CachePrefixRoster)+result.RosterID, result.Window, rosterWindowTTL)

	logging.Info("Roster generated",
		"roster_id", result.RosterID,
		"assignments", len(result.Assignments),
		"unassigned_flights", result.Metrics.UnassignedFlights,
		"partial", result.Metrics.Partial,
	)
	return result, nil
}

// persist writes assignments and their explanations under partition locks.
// The assignment batch commits in one transaction, and persistence keeps
// going after the request context expires so a partial result is never
// half-written.
func (s *RosterService) persist(ctx context.Context, result *dtos.RosterGenerationResult, explanations []dtos.ExplanationRecord) error {
	if len(result.Assignments) == 0 {
		return nil
	}

	crewIDs := make([]string, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		crewIDs = append(crewIDs, a.CrewID)
	}
	release := s.locks.Acquire(crewIDs...)
	defer release()

	writeCtx := context.WithoutCancel(ctx)
	err := s.rosters.Transact(writeCtx, func(tx *repositories.RosterTx) error {
		for i := range result.Assignments {
			if err := s.insertOrRevive(writeCtx, tx, &result.Assignments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range result.Assignments {
		a := &result.Assignments[i]
		if err := s.audit.Append(writeCtx, "rosters", a.ID, "create", "engine", nil, a); err != nil {
			return err
		}
		s.index.InvalidateCrew(a.CrewID)
	}

	for _, rec := range explanations {
		if err := s.expls.Create(writeCtx, rec); err != nil {
			return err
		}
		if s.render != nil {
			s.render(rec.ID)
		}
	}
	return nil
}

// rosterWriter is the write surface insertOrRevive needs; both the repository
// and its transaction view satisfy it.
type rosterWriter interface {
	Get(ctx context.Context, id string) (*entities.RosterAssignment, error)
	Insert(ctx context.Context, a *entities.RosterAssignment) error
	UpdateStatus(ctx context.Context, id string, status entities.AssignmentStatus, confidence float64, version int) (bool, error)
}

// insertOrRevive inserts the assignment, or revives an existing row with the
// same derived id; a re-run over the same window reproduces ids.
func (s *RosterService) insertOrRevive(ctx context.Context, tx rosterWriter, a *entities.RosterAssignment) error {
	current, err := tx.Get(ctx, a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return tx.Insert(ctx, a)
	}
	if err != nil {
		return err
	}

	if current.Status == a.Status {
		return nil
	}
	ok, err := tx.UpdateStatus(ctx, a.ID, a.Status, a.Confidence, current.Version)
	if err != nil {
		return err
	}
	if !ok {
		return engine.ErrConflict
	}
	return nil
}

// GetRosters returns the assignments intersecting the window.
func (s *RosterService) GetRosters(ctx context.Context, window entities.TimeWindow, limit, offset int) (*dtos.AssignmentListResponse, error) {
	if !window.Valid() {
		return nil, engine.NewValidationError("window", "start and end must be set with end after start")
	}
	if limit <= 0 || limit > maxWindowAssignments {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	assignments, err := s.rosters.ListByWindow(ctx, window, limit, offset)
	if err != nil {
		return nil, err
	}
	// Total counts the whole window, not the returned page.
	total, err := s.rosters.CountByWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	return &dtos.AssignmentListResponse{
		Assignments: assignments,
		Total:       total,
	}, nil
}

// OptimizeRoster re-runs generation over a previously generated roster's
// window. Confirmed assignments are preserved as fixed input; tentative ones
// are cancelled and their slots reopened for a better pick.
func (s *RosterService) OptimizeRoster(ctx context.Context, rosterID string) (*dtos.RosterGenerationResult, error) {
	v, found := s.cache.Get(string(constants.CachePrefixRoster) + rosterID)
	if !found {
		return nil, engine.ErrNotFound
	}
	window, ok := v.(entities.TimeWindow)
	if !ok {
		return nil, engine.ErrNotFound
	}

	started := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationBudget)
	defer cancel()

	existing, err := s.rosters.ListByWindow(runCtx, window, maxWindowAssignments, 0)
	if err != nil {
		return nil, err
	}

	crewIDs := make([]string, 0, len(existing))
	for _, a := range existing {
		crewIDs = append(crewIDs, a.CrewID)
	}
	release := s.locks.Acquire(crewIDs...)
	defer release()

	writeCtx := context.WithoutCancel(ctx)
	kept := make([]entities.RosterAssignment, 0, len(existing))
	reopened := make([]entities.RosterAssignment, 0, len(existing))
	for _, a := range existing {
		if a.Status != entities.AssignmentTentative {
			if a.Status.Active() {
				kept = append(kept, a)
			}
			continue
		}
		reopened = append(reopened, a)
	}

	// Reopening the tentative slots is all-or-nothing; a conflict mid-batch
	// must not leave half the roster cancelled.
	err = s.rosters.Transact(writeCtx, func(tx *repositories.RosterTx) error {
		for _, a := range reopened {
			ok, err := tx.UpdateStatus(writeCtx, a.ID, entities.AssignmentCancelled, 0, a.Version)
			if err != nil {
				return err
			}
			if !ok {
				return engine.ErrConflict
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, a := range reopened {
		if err := s.audit.Append(writeCtx, "rosters", a.ID, "cancel", "optimizer", a, nil); err != nil {
			return nil, err
		}
		s.index.InvalidateCrew(a.CrewID)
	}

	flights, err := s.flights.ListByWindow(runCtx, window)
	if err != nil {
		return nil, err
	}

	result, explanations, err := s.gen.Generate(runCtx, engine.GenerateInput{
		Window:   window,
		Flights:  flights,
		Existing: kept,
	})
	if err != nil {
		return nil, err
	}

	err = s.rosters.Transact(writeCtx, func(tx *repositories.RosterTx) error {
		for i := range result.Assignments {
			if err := s.insertOrRevive(writeCtx, tx, &result.Assignments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range result.Assignments {
		a := &result.Assignments[i]
		if err := s.audit.Append(writeCtx, "rosters", a.ID, "create", "optimizer", nil, a); err != nil {
			return nil, err
		}
		s.index.InvalidateCrew(a.CrewID)
	}
	for _, rec := range explanations {
		if err := s.expls.Create(writeCtx, rec); err != nil {
			return nil, err
		}
		if s.render != nil {
			s.render(rec.ID)
		}
	}

	if s.metrics != nil {
		s.metrics.EngineDuration.WithLabelValues("optimize").Observe(time.Since(started).Seconds())
	}

	logging.Info("Roster optimized",
		"roster_id", rosterID,
		"assignments", len(result.Assignments),
		"optimization_score", result.Metrics.OptimizationScore,
	)
	return result, nil
}

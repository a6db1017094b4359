package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	"aero-rhythm/crewops/internal/rules"
)

// resolutionHorizon bounds how far ahead of the event the resolver looks for
// affected assignments.
const resolutionHorizon = 14 * 24 * time.Hour

// recommendationTTL keeps previewed recommendations applicable without a
// fresh resolve call.
const recommendationTTL = 30 * time.Minute

// cachedRecommendation pairs a previewed recommendation with the event that
// produced it, so apply can verify the pairing.
type cachedRecommendation struct {
	EventID        string
	Recommendation dtos.Recommendation
}

// DisruptionService owns the disruption lifecycle: report, preview, explicit
// apply, explicit resolve. Previews never mutate the roster; every mutation
// goes through ApplyRecommendation under partition locks with a bounded
// optimistic retry loop.
type DisruptionService struct {
	cfg      config.EngineConfig
	resolver *engine.Resolver
	eval     *rules.Evaluator
	index    *eligibility.Index
	store    *EligibilityStore
	events   *repositories.DisruptionRepository
	rosters  *repositories.RosterRepository
	flightsR *repositories.FlightRepository
	audit    *repositories.AuditRepository
	locks    *engine.PartitionLocks
	cache    common.CacheInterface
	metrics  *metrics.MetricsRegistry
}

func NewDisruptionService(
	cfg config.EngineConfig,
	resolver *engine.Resolver,
	index *eligibility.Index,
	store *EligibilityStore,
	events *repositories.DisruptionRepository,
	rosters *repositories.RosterRepository,
	flights *repositories.FlightRepository,
	audit *repositories.AuditRepository,
	locks *engine.PartitionLocks,
	cache common.CacheInterface,
	reg *metrics.MetricsRegistry,
) *DisruptionService {
	return &DisruptionService{
		cfg:      cfg,
		resolver: resolver,
		eval:     rules.NewEvaluator(cfg),
		index:    index,
		store:    store,
		events:   events,
		rosters:  rosters,
		flightsR: flights,
		audit:    audit,
		locks:    locks,
		cache:    cache,
		metrics:  reg,
	}
}

// HandleDisruption records a new event and returns the resolution preview.
func (s *DisruptionService) HandleDisruption(ctx context.Context, req dtos.DisruptionRequest) (*dtos.DisruptionResponse, error) {
	if !req.Type.IsValid() {
		return nil, engine.NewValidationError("type", fmt.Sprintf("unknown disruption type %q", req.Type))
	}
	if !req.Severity.IsValid() {
		return nil, engine.NewValidationError("severity", fmt.Sprintf("unknown severity %q", req.Severity))
	}
	if len(req.AffectedFlights) == 0 && len(req.AffectedCrew) == 0 {
		return nil, engine.NewValidationError("affected", "at least one affected flight or crew member is required")
	}

	event := entities.DisruptionEvent{
		ID:              uuid.NewString(),
		Type:            req.Type,
		Severity:        req.Severity,
		AffectedFlights: req.AffectedFlights,
		AffectedCrew:    req.AffectedCrew,
		DetectedAt:      time.Now().UTC(),
		Status:          entities.DisruptionActive,
		Attributes:      req.Attributes,
	}
	if err := s.events.Create(ctx, &event); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DisruptionsReportedTotal.WithLabelValues(string(event.Type)).Inc()
	}
	logging.Info("Disruption reported",
		"event_id", event.ID,
		"type", event.Type,
		"affected_flights", len(event.AffectedFlights),
		"affected_crew", len(event.AffectedCrew),
	)

	return s.preview(ctx, event)
}

// preview runs the resolver over the current roster and caches each
// recommendation for a later apply.
func (s *DisruptionService) preview(ctx context.Context, event entities.DisruptionEvent) (*dtos.DisruptionResponse, error) {
	started := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationBudget)
	defer cancel()

	roster, flights, err := s.loadScope(runCtx, event)
	if err != nil {
		return nil, err
	}

	resp, err := s.resolver.Resolve(runCtx, event, roster, flights)
	if err != nil {
		return nil, err
	}

	for _, rec := range resp.Recommendations {
		s.cache.Set(string(constants.CachePrefixRecommend)+rec.ID,
			cachedRecommendation{EventID: event.ID, Recommendation: rec}, recommendationTTL)
	}

	if s.metrics != nil {
		s.metrics.EngineDuration.WithLabelValues("resolve").Observe(time.Since(started).Seconds())
		for range resp.Recommendations {
			s.metrics.RecommendationsBuiltTotal.Inc()
		}
	}
	if resp.NoEligibleCrew {
		logging.Warn("No eligible crew for disruption", "event_id", event.ID)
	}
	return resp, nil
}

// loadScope gathers the assignments and flights the resolver needs: the
// roster from the event forward over the resolution horizon, plus every
// flight referenced by the event or the affected assignments.
func (s *DisruptionService) loadScope(ctx context.Context, event entities.DisruptionEvent) ([]entities.RosterAssignment, map[string]entities.Flight, error) {
	window := entities.TimeWindow{
		Start: event.DetectedAt.Add(-24 * time.Hour),
		End:   event.DetectedAt.Add(resolutionHorizon),
	}
	roster, err := s.rosters.ListByWindow(ctx, window, maxWindowAssignments, 0)
	if err != nil {
		return nil, nil, err
	}

	flightIDs := make(map[string]struct{}, len(event.AffectedFlights))
	for _, id := range event.AffectedFlights {
		flightIDs[id] = struct{}{}
	}
	for _, a := range roster {
		if a.FlightID != nil {
			flightIDs[*a.FlightID] = struct{}{}
		}
	}

	flights := make(map[string]entities.Flight, len(flightIDs))
	for id := range flightIDs {
		f, err := s.flightsR.GetFlight(ctx, id)
		if err != nil {
			// Assignments may reference flights outside the current
			// schedule export; they simply cannot be restaffed.
			logging.Debug("Flight lookup failed during resolution", "flight_id", id, "error", err)
			continue
		}
		flights[id] = *f
	}
	return roster, flights, nil
}

// ApplyRecommendation commits one previewed recommendation. The touched crew
// partitions are locked, the proposal is re-evaluated against fresh state,
// and the writes run under optimistic version checks with bounded retries.
func (s *DisruptionService) ApplyRecommendation(ctx context.Context, eventID string, req dtos.ApplyRecommendationRequest) (*dtos.AffectedAssignment, error) {
	if req.RecommendationID == "" {
		return nil, engine.NewValidationError("recommendation_id", "must not be empty")
	}

	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if event.Status != entities.DisruptionActive {
		return nil, engine.ErrConflict
	}

	rec, err := s.lookupRecommendation(ctx, *event, req.RecommendationID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.rosters.Get(ctx, rec.AssignmentID)
	if err != nil {
		return nil, err
	}

	release := s.locks.Acquire(assignment.CrewID, rec.CrewID)
	defer release()

	var applied *dtos.AffectedAssignment
	for attempt := 0; ; attempt++ {
		applied, err = s.applyOnce(ctx, *event, *rec, assignment)
		if err == nil {
			break
		}
		if !errors.Is(err, engine.ErrConflict) || attempt >= s.cfg.ConflictRetries {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.ConflictRetriesTotal.Inc()
		}
		assignment, err = s.rosters.Get(ctx, rec.AssignmentID)
		if err != nil {
			return nil, err
		}
	}

	s.cache.Delete(string(constants.CachePrefixRecommend) + rec.ID)
	s.index.InvalidateCrew(assignment.CrewID)
	if rec.CrewID != "" {
		s.index.InvalidateCrew(rec.CrewID)
	}

	logging.Info("Recommendation applied",
		"event_id", eventID,
		"recommendation_id", rec.ID,
		"action", rec.Action,
		"assignment_id", rec.AssignmentID,
	)
	return applied, nil
}

// lookupRecommendation fetches the previewed recommendation, re-resolving the
// event when the cache entry has expired.
func (s *DisruptionService) lookupRecommendation(ctx context.Context, event entities.DisruptionEvent, recID string) (*dtos.Recommendation, error) {
	if v, found := s.cache.Get(string(constants.CachePrefixRecommend) + recID); found {
		if cached, ok := v.(cachedRecommendation); ok && cached.EventID == event.ID {
			rec := cached.Recommendation
			return &rec, nil
		}
	}

	resp, err := s.preview(ctx, event)
	if err != nil {
		return nil, err
	}
	for _, rec := range resp.Recommendations {
		if rec.ID == recID {
			r := rec
			return &r, nil
		}
	}
	return nil, fmt.Errorf("apply: %w: recommendation %s", engine.ErrNotFound, recID)
}

func (s *DisruptionService) applyOnce(
	ctx context.Context,
	event entities.DisruptionEvent,
	rec dtos.Recommendation,
	assignment *entities.RosterAssignment,
) (*dtos.AffectedAssignment, error) {
	switch rec.Action {
	case dtos.ActionReassignCrew:
		return s.applyReassign(ctx, event, rec, assignment)
	case dtos.ActionDelayDeparture:
		return s.applyDelay(ctx, rec, assignment)
	case dtos.ActionCancelFlight:
		return s.applyCancel(ctx, rec, assignment)
	default:
		return nil, engine.NewValidationError("action", fmt.Sprintf("unknown action %q", rec.Action))
	}
}

// applyReassign releases the original crew member and books the replacement.
// The replacement is re-evaluated against fresh state right before commit; a
// new critical violation that appeared since the preview aborts the apply.
func (s *DisruptionService) applyReassign(
	ctx context.Context,
	event entities.DisruptionEvent,
	rec dtos.Recommendation,
	assignment *entities.RosterAssignment,
) (*dtos.AffectedAssignment, error) {
	flight, err := s.flightsR.GetFlight(ctx, rec.FlightID)
	if err != nil {
		return nil, err
	}
	crew, err := s.store.crewRepo.GetCrew(ctx, rec.CrewID)
	if err != nil {
		return nil, err
	}

	window := assignment.Window()
	state, err := s.store.CrewState(ctx, rec.CrewID, window)
	if err != nil {
		return nil, err
	}
	violations := s.eval.Evaluate(rules.Candidate{
		Crew:     *crew,
		Flight:   flight,
		DutyType: entities.DutyFlight,
		Position: assignment.Position,
		Start:    assignment.Start,
		End:      assignment.End,
	}, *state)
	for _, v := range violations {
		if v.Severity == entities.SeverityCritical {
			return nil, engine.NewValidationError("recommendation",
				fmt.Sprintf("replacement crew %s no longer eligible: %s", rec.CrewID, v.Description))
		}
	}

	releasedStatus := entities.AssignmentOnSickLeave
	if !event.Type.ReplacesCrew() {
		releasedStatus = entities.AssignmentCancelled
	}

	flightID := rec.FlightID
	explID := engine.NewExplanationID(engine.NewAppliedAssignmentID(rec.ID))
	replacement := entities.RosterAssignment{
		ID:            engine.NewAppliedAssignmentID(rec.ID),
		CrewID:        rec.CrewID,
		FlightID:      &flightID,
		DutyType:      entities.DutyFlight,
		Position:      assignment.Position,
		Start:         assignment.Start,
		End:           assignment.End,
		Status:        entities.AssignmentConfirmed,
		Confidence:    engine.Confidence(violations, s.cfg),
		Violations:    violations,
		ExplanationID: &explID,
		Version:       1,
	}

	// Release and replacement commit together; a failure on either side
	// rolls both back so the slot is never left empty.
	err = s.rosters.Transact(ctx, func(tx *repositories.RosterTx) error {
		ok, err := tx.UpdateStatus(ctx, assignment.ID, releasedStatus, 0, assignment.Version)
		if err != nil {
			return err
		}
		if !ok {
			return engine.ErrConflict
		}
		return tx.Insert(ctx, &replacement)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, "rosters", assignment.ID, "release", "resolver", assignment, nil); err != nil {
		return nil, err
	}
	if err := s.audit.Append(ctx, "rosters", replacement.ID, "create", "resolver", nil, replacement); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssignmentsCreatedTotal.WithLabelValues(string(replacement.Status)).Inc()
	}
	return &dtos.AffectedAssignment{
		Assignment:     replacement,
		NewViolations:  violations,
		ProposedStatus: replacement.Status,
	}, nil
}

// applyDelay moves the duty to the shifted window: the original row is
// cancelled and a successor row with the new times is created, keeping the
// assignment history intact.
func (s *DisruptionService) applyDelay(ctx context.Context, rec dtos.Recommendation, assignment *entities.RosterAssignment) (*dtos.AffectedAssignment, error) {
	if rec.NewStart == nil || rec.NewEnd == nil {
		return nil, engine.NewValidationError("recommendation", "delay recommendation is missing shifted times")
	}
	newStart, err := time.Parse(time.RFC3339, *rec.NewStart)
	if err != nil {
		return nil, engine.NewValidationError("new_start", err.Error())
	}
	newEnd, err := time.Parse(time.RFC3339, *rec.NewEnd)
	if err != nil {
		return nil, engine.NewValidationError("new_end", err.Error())
	}

	status := entities.AssignmentConfirmed
	if len(rec.Violations) > 0 {
		status = entities.AssignmentTentative
	}
	explID := engine.NewExplanationID(engine.NewAppliedAssignmentID(rec.ID))
	shifted := entities.RosterAssignment{
		ID:            engine.NewAppliedAssignmentID(rec.ID),
		CrewID:        assignment.CrewID,
		FlightID:      assignment.FlightID,
		DutyType:      assignment.DutyType,
		Position:      assignment.Position,
		Start:         newStart,
		End:           newEnd,
		Status:        status,
		Confidence:    rec.Confidence,
		Violations:    rec.Violations,
		ExplanationID: &explID,
		Version:       1,
	}

	// Cancelling the original and booking the shifted successor is one
	// transaction; the duty never disappears from the roster mid-apply.
	err = s.rosters.Transact(ctx, func(tx *repositories.RosterTx) error {
		ok, err := tx.UpdateStatus(ctx, assignment.ID, entities.AssignmentCancelled, 0, assignment.Version)
		if err != nil {
			return err
		}
		if !ok {
			return engine.ErrConflict
		}
		return tx.Insert(ctx, &shifted)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, "rosters", assignment.ID, "shift", "resolver", assignment, nil); err != nil {
		return nil, err
	}
	if err := s.audit.Append(ctx, "rosters", shifted.ID, "create", "resolver", nil, shifted); err != nil {
		return nil, err
	}

	return &dtos.AffectedAssignment{
		Assignment:     shifted,
		NewViolations:  rec.Violations,
		ProposedStatus: status,
	}, nil
}

// applyCancel cancels every active assignment on the recommendation's flight.
func (s *DisruptionService) applyCancel(ctx context.Context, rec dtos.Recommendation, assignment *entities.RosterAssignment) (*dtos.AffectedAssignment, error) {
	window := entities.TimeWindow{
		Start: assignment.Start.Add(-24 * time.Hour),
		End:   assignment.End.Add(24 * time.Hour),
	}
	roster, err := s.rosters.ListByWindow(ctx, window, maxWindowAssignments, 0)
	if err != nil {
		return nil, err
	}

	onFlight := make([]entities.RosterAssignment, 0, len(roster))
	for _, a := range roster {
		if !a.Status.Active() || a.FlightID == nil || *a.FlightID != rec.FlightID {
			continue
		}
		onFlight = append(onFlight, a)
	}

	// The whole crew complement is released together or not at all.
	err = s.rosters.Transact(ctx, func(tx *repositories.RosterTx) error {
		for _, a := range onFlight {
			ok, err := tx.UpdateStatus(ctx, a.ID, entities.AssignmentCancelled, 0, a.Version)
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
	for _, a := range onFlight {
		if err := s.audit.Append(ctx, "rosters", a.ID, "cancel", "resolver", a, nil); err != nil {
			return nil, err
		}
		s.index.InvalidateCrew(a.CrewID)
	}

	cancelled := *assignment
	cancelled.Status = entities.AssignmentCancelled
	return &dtos.AffectedAssignment{
		Assignment:     cancelled,
		ProposedStatus: entities.AssignmentCancelled,
	}, nil
}

// ResolveDisruption explicitly closes an active event. It never rewrites
// historical assignments.
func (s *DisruptionService) ResolveDisruption(ctx context.Context, id string) (*entities.DisruptionEvent, error) {
	ok, err := s.events.MarkResolved(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		_, err := s.events.Get(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		// Exists but not active: resolving twice is a conflict.
		return nil, engine.ErrConflict
	}

	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logging.Info("Disruption resolved", "event_id", id)
	return event, nil
}

// ListDisruptions returns events newest-first.
func (s *DisruptionService) ListDisruptions(ctx context.Context, limit, offset int) ([]entities.DisruptionEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.events.List(ctx, limit, offset)
}

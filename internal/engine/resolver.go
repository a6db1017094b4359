package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

var recommendationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("crewops/recommendations"))

// maxReplacementsPerSlot caps how many ranked replacement proposals one
// affected assignment contributes.
const maxReplacementsPerSlot = 3

// Resolver turns a disruption event into a resolution preview: the affected
// assignments, the violations the disruption introduces, and a ranked list
// of recommendations. Resolve never mutates roster state; applying a
// recommendation is a separate explicit step.
type Resolver struct {
	cfg   config.EngineConfig
	eval  *rules.Evaluator
	index *eligibility.Index
	store eligibility.Store
}

func NewResolver(cfg config.EngineConfig, index *eligibility.Index, store eligibility.Store) *Resolver {
	return &Resolver{
		cfg:   cfg,
		eval:  rules.NewEvaluator(cfg),
		index: index,
		store: store,
	}
}

// Resolve previews the handling of one disruption event against the current
// roster. Calling it twice without applying anything yields the same answer
// and leaves the roster untouched.
func (r *Resolver) Resolve(
	ctx context.Context,
	event entities.DisruptionEvent,
	roster []entities.RosterAssignment,
	flights map[string]entities.Flight,
) (*dtos.DisruptionResponse, error) {
	affected := affectedAssignments(event, roster)

	resp := &dtos.DisruptionResponse{
		EventID:             event.ID,
		AffectedAssignments: make([]dtos.AffectedAssignment, 0, len(affected)),
		Recommendations:     []dtos.Recommendation{},
	}

	crewByID, err := r.crewByID(ctx)
	if err != nil {
		return nil, err
	}

	searched := false
	for _, a := range affected {
		if ctx.Err() != nil {
			break
		}

		if event.Type.ReplacesCrew() {
			aff, recs, didSearch, err := r.replaceCrew(ctx, event, a, roster, flights)
			if err != nil {
				return nil, err
			}
			searched = searched || didSearch
			resp.AffectedAssignments = append(resp.AffectedAssignments, aff)
			resp.Recommendations = append(resp.Recommendations, recs...)
			continue
		}

		aff, recs, err := r.reEvaluateShifted(ctx, event, a, crewByID, flights)
		if err != nil {
			return nil, err
		}
		resp.AffectedAssignments = append(resp.AffectedAssignments, aff)
		resp.Recommendations = append(resp.Recommendations, recs...)
	}

	sort.SliceStable(resp.Recommendations, func(i, j int) bool {
		if resp.Recommendations[i].Priority != resp.Recommendations[j].Priority {
			return resp.Recommendations[i].Priority < resp.Recommendations[j].Priority
		}
		return resp.Recommendations[i].ID < resp.Recommendations[j].ID
	})

	// The explicit exhausted-pool state: a replacement search actually ran
	// and found nothing anywhere in the eligible pool. Released non-flight
	// duties never trip it; there is no pool to exhaust.
	resp.NoEligibleCrew = searched && len(resp.Recommendations) == 0

	return resp, nil
}

// replaceCrew searches the eligibility index for substitutes for one
// assignment whose crew the disruption removed, excluding every crew member
// the event names. The returned bool reports whether a search ran at all.
func (r *Resolver) replaceCrew(
	ctx context.Context,
	event entities.DisruptionEvent,
	a entities.RosterAssignment,
	roster []entities.RosterAssignment,
	flights map[string]entities.Flight,
) (dtos.AffectedAssignment, []dtos.Recommendation, bool, error) {
	aff := dtos.AffectedAssignment{
		Assignment:     a,
		ProposedStatus: entities.AssignmentOnSickLeave,
	}

	if a.FlightID == nil {
		// Non-flight duty: nothing to restaff, the duty is simply released.
		aff.ProposedStatus = entities.AssignmentCancelled
		return aff, nil, false, nil
	}
	flight, ok := flights[*a.FlightID]
	if !ok {
		return aff, nil, false, fmt.Errorf("resolve: %w: flight %s", ErrNotFound, *a.FlightID)
	}

	excluded := make(map[string]struct{}, len(event.AffectedCrew)+1)
	excluded[a.CrewID] = struct{}{}
	for _, id := range event.AffectedCrew {
		excluded[id] = struct{}{}
	}

	req := eligibility.DutyRequirement{
		Position:     a.Position,
		AircraftType: flight.AircraftType,
		BaseAirport:  flight.Origin,
	}
	candidates, err := r.index.CandidatesFor(ctx, req, a.Window())
	if err != nil {
		return aff, nil, true, fmt.Errorf("resolve: candidates for %s: %w", a.ID, err)
	}

	var recs []dtos.Recommendation
	for _, cand := range candidates {
		if len(recs) >= maxReplacementsPerSlot {
			break
		}
		if _, skip := excluded[cand.Crew.ID]; skip {
			continue
		}

		rc := rules.Candidate{
			Crew:     cand.Crew,
			Flight:   &flight,
			DutyType: entities.DutyFlight,
			Position: a.Position,
			Start:    a.Start,
			End:      a.End,
		}
		violations := r.eval.Evaluate(rc, cand.State)
		if criticalCount(violations) > 0 {
			continue
		}

		recs = append(recs, dtos.Recommendation{
			ID:       newRecommendationID(event.ID, a.ID, dtos.ActionReassignCrew, cand.Crew.ID),
			Action:   dtos.ActionReassignCrew,
			Priority: priorityFor(entities.SeverityCritical, 1, len(recs)),
			Description: fmt.Sprintf("Reassign crew %s to flight %s as %s",
				cand.Crew.ID, flight.ID, a.Position),
			EstimatedImpact: impactFor(event),
			AssignmentID:    a.ID,
			FlightID:        flight.ID,
			CrewID:          cand.Crew.ID,
			Confidence:      Confidence(violations, r.cfg),
			Violations:      violations,
		})
	}

	return aff, recs, true, nil
}

// reEvaluateShifted handles schedule-shifting disruptions: crew stays, but
// the duty window moves, so the rest/duty chain is re-checked against the
// shifted times.
func (r *Resolver) reEvaluateShifted(
	ctx context.Context,
	event entities.DisruptionEvent,
	a entities.RosterAssignment,
	crewByID map[string]entities.CrewMember,
	flights map[string]entities.Flight,
) (dtos.AffectedAssignment, []dtos.Recommendation, error) {
	aff := dtos.AffectedAssignment{
		Assignment:     a,
		ProposedStatus: a.Status,
	}

	crew, ok := crewByID[a.CrewID]
	if !ok {
		return aff, nil, fmt.Errorf("resolve: %w: crew %s", ErrNotFound, a.CrewID)
	}

	shift := time.Duration(event.DelayMinutes()) * time.Minute
	newStart := a.Start.Add(shift)
	newEnd := a.End.Add(shift)
	window := entities.TimeWindow{Start: newStart, End: newEnd}

	state, err := r.store.CrewState(ctx, a.CrewID, window)
	if err != nil {
		return aff, nil, fmt.Errorf("resolve: state for crew %s: %w", a.CrewID, err)
	}

	var flight *entities.Flight
	if a.FlightID != nil {
		if f, found := flights[*a.FlightID]; found {
			flight = &f
		}
	}

	rc := rules.Candidate{
		AssignmentID: a.ID,
		Crew:         crew,
		Flight:       flight,
		DutyType:     a.DutyType,
		Position:     a.Position,
		Start:        newStart,
		End:          newEnd,
	}
	violations := r.eval.Evaluate(rc, *state)
	aff.NewViolations = violations

	startStr := newStart.UTC().Format(time.RFC3339)
	endStr := newEnd.UTC().Format(time.RFC3339)

	var recs []dtos.Recommendation
	if len(violations) == 0 {
		recs = append(recs, dtos.Recommendation{
			ID:       newRecommendationID(event.ID, a.ID, dtos.ActionDelayDeparture, a.CrewID),
			Action:   dtos.ActionDelayDeparture,
			Priority: priorityFor(entities.SeverityLow, 1, 0),
			Description: fmt.Sprintf("Accept %dm schedule shift for assignment %s, no new violations",
				event.DelayMinutes(), a.ID),
			EstimatedImpact: impactFor(event),
			AssignmentID:    a.ID,
			FlightID:        flightIDOrEmpty(a),
			Confidence:      1.0,
			NewStart:        &startStr,
			NewEnd:          &endStr,
		})
		return aff, recs, nil
	}

	worst := violations[0].Severity
	recs = append(recs, dtos.Recommendation{
		ID:       newRecommendationID(event.ID, a.ID, dtos.ActionDelayDeparture, a.CrewID),
		Action:   dtos.ActionDelayDeparture,
		Priority: priorityFor(worst, 1, 0),
		Description: fmt.Sprintf("Accept %dm schedule shift for assignment %s with %d new violation(s)",
			event.DelayMinutes(), a.ID, len(violations)),
		EstimatedImpact: impactFor(event),
		AssignmentID:    a.ID,
		FlightID:        flightIDOrEmpty(a),
		Confidence:      Confidence(violations, r.cfg),
		Violations:      violations,
		NewStart:        &startStr,
		NewEnd:          &endStr,
	})

	if worst == entities.SeverityCritical && a.FlightID != nil {
		recs = append(recs, dtos.Recommendation{
			ID:       newRecommendationID(event.ID, a.ID, dtos.ActionCancelFlight, a.CrewID),
			Action:   dtos.ActionCancelFlight,
			Priority: priorityFor(entities.SeverityCritical, 1, 1),
			Description: fmt.Sprintf("Cancel flight %s: shifted window breaks a hard constraint",
				*a.FlightID),
			EstimatedImpact: impactFor(event),
			AssignmentID:    a.ID,
			FlightID:        *a.FlightID,
			Confidence:      0,
			Violations:      violations,
		})
	}
	return aff, recs, nil
}

func (r *Resolver) crewByID(ctx context.Context) (map[string]entities.CrewMember, error) {
	crew, err := r.store.ListCrew(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: list crew: %w", err)
	}
	out := make(map[string]entities.CrewMember, len(crew))
	for _, c := range crew {
		out[c.ID] = c
	}
	return out, nil
}

// affectedAssignments resolves the event's flight/crew identifiers to the
// active assignments touching them, preserving roster order.
func affectedAssignments(event entities.DisruptionEvent, roster []entities.RosterAssignment) []entities.RosterAssignment {
	flightSet := make(map[string]struct{}, len(event.AffectedFlights))
	for _, id := range event.AffectedFlights {
		flightSet[id] = struct{}{}
	}
	crewSet := make(map[string]struct{}, len(event.AffectedCrew))
	for _, id := range event.AffectedCrew {
		crewSet[id] = struct{}{}
	}

	var out []entities.RosterAssignment
	for _, a := range roster {
		if !a.Status.Active() {
			continue
		}
		if _, hit := crewSet[a.CrewID]; hit {
			out = append(out, a)
			continue
		}
		if a.FlightID != nil {
			if _, hit := flightSet[*a.FlightID]; hit {
				out = append(out, a)
			}
		}
	}
	return out
}

// priorityFor derives a rank for a recommendation: the severity of the
// violation it resolves dominates, then how many assignments it touches,
// then its position within equally ranked alternatives. Lower is better.
func priorityFor(resolved entities.Severity, touched, rank int) int {
	p := (4-resolved.Rank())*100 + rank - (touched - 1)
	if p < 0 {
		p = 0
	}
	return p
}

func impactFor(event entities.DisruptionEvent) string {
	delay := event.DelayMinutes()
	pax := event.PassengersAffected()
	switch {
	case delay > 0 && pax > 0:
		return fmt.Sprintf("%dm delay, %d passengers affected", delay, pax)
	case delay > 0:
		return fmt.Sprintf("%dm delay", delay)
	case pax > 0:
		return fmt.Sprintf("%d passengers affected", pax)
	default:
		return ""
	}
}

func flightIDOrEmpty(a entities.RosterAssignment) string {
	if a.FlightID == nil {
		return ""
	}
	return *a.FlightID
}

func newRecommendationID(eventID, assignmentID, action, crewID string) string {
	key := fmt.Sprintf("%s|%s|%s|%s", eventID, assignmentID, action, crewID)
	return uuid.NewSHA1(recommendationNamespace, []byte(key)).String()
}

// NewAppliedAssignmentID derives the stable id of the assignment created by
// applying a recommendation, so a retried apply cannot mint a second copy.
func NewAppliedAssignmentID(recommendationID string) string {
	return uuid.NewSHA1(recommendationNamespace, []byte("applied|"+recommendationID)).String()
}

package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

var assignmentNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("crewops/assignments"))

// slotPositions fixes the order position slots are filled in; together with
// the flight ordering and the index ranking this makes generation fully
// rule-driven with no hidden randomness.
var slotPositions = []entities.CrewPosition{
	entities.PositionCaptain,
	entities.PositionFirstOfficer,
	entities.PositionFlightAttendant,
}

// GenerateInput is everything one generation run consumes. Existing
// assignments constrain the run (duty hours, rest chains, double booking)
// and already-filled slots are not refilled.
type GenerateInput struct {
	Window   entities.TimeWindow
	Flights  []entities.Flight
	Existing []entities.RosterAssignment

	// Degraded is set by the caller when input data came from a cached
	// snapshot because an upstream source was unreachable.
	Degraded bool
}

// Generator builds rosters with a greedy constructive pass: earliest duties
// first, best-ranked eligible candidate per slot, constraint evaluation on
// every tentative pick. Crew rostering is NP-hard at scale, so this is a
// heuristic optimizer, not an exact solver.
type Generator struct {
	cfg   config.EngineConfig
	eval  *rules.Evaluator
	index *eligibility.Index
}

func NewGenerator(cfg config.EngineConfig, index *eligibility.Index) *Generator {
	return &Generator{
		cfg:   cfg,
		eval:  rules.NewEvaluator(cfg),
		index: index,
	}
}

// Generate produces assignments for every required slot in the flight set.
// Given identical inputs the result is identical, ids included (assignment
// ids are derived, not random). An empty flight set yields an empty, valid
// result. If ctx expires mid-run the flights processed so far are returned
// with the Partial flag set; unprocessed flights are reported unassigned
// rather than silently dropped.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*dtos.RosterGenerationResult, []dtos.ExplanationRecord, error) {
	flights := make([]entities.Flight, len(in.Flights))
	copy(flights, in.Flights)
	sort.SliceStable(flights, func(i, j int) bool {
		if !flights[i].Departure.Equal(flights[j].Departure) {
			return flights[i].Departure.Before(flights[j].Departure)
		}
		return flights[i].ID < flights[j].ID
	})

	// Working view of each crew member's schedule: existing active
	// assignments plus everything created during this run.
	byCrew := make(map[string][]entities.RosterAssignment)
	filled := make(map[string]int) // flightID|position -> active count
	crewOnFlight := make(map[string]map[string]struct{})
	for _, a := range in.Existing {
		if !a.Status.Active() {
			continue
		}
		byCrew[a.CrewID] = append(byCrew[a.CrewID], a)
		if a.FlightID != nil {
			filled[slotKey(*a.FlightID, a.Position)]++
			markCrewOnFlight(crewOnFlight, *a.FlightID, a.CrewID)
		}
	}

	var (
		assignments  []entities.RosterAssignment
		explanations []dtos.ExplanationRecord
		unassigned   []string
		partial      bool
	)

	for fi, flight := range flights {
		if ctx.Err() != nil {
			partial = true
			for _, rest := range flights[fi:] {
				unassigned = append(unassigned, rest.ID)
			}
			logging.Warn("Roster generation hit time budget",
				"flights_processed", fi,
				"flights_remaining", len(flights)-fi,
			)
			break
		}

		window := flight.DutyWindow()
		flightUnassigned := false

		for _, pos := range slotPositions {
			needed := flight.RequiredFor(pos) - filled[slotKey(flight.ID, pos)]
			for slot := 0; slot < needed; slot++ {
				created, expl, ok, err := g.fillSlot(ctx, flight, pos, slot, window, byCrew, crewOnFlight)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					flightUnassigned = true
					continue
				}
				assignments = append(assignments, *created)
				explanations = append(explanations, *expl)
				byCrew[created.CrewID] = append(byCrew[created.CrewID], *created)
				markCrewOnFlight(crewOnFlight, flight.ID, created.CrewID)
			}
		}

		if flightUnassigned {
			unassigned = append(unassigned, flight.ID)
		}
	}

	result := &dtos.RosterGenerationResult{
		RosterID:    newRosterID(in.Window, flights),
		Window:      in.Window,
		Assignments: assignments,
		Metrics:     BuildMetrics(assignments, len(flights), unassigned, partial, in.Degraded),
	}
	return result, explanations, nil
}

// fillSlot picks the crew for one required position slot. The first ranked
// candidate free of critical violations wins and is confirmed; when every
// candidate carries a critical violation the least-bad one is still assigned,
// marked tentative, with all violations attached. Only an empty candidate
// pool leaves the slot unfilled.
func (g *Generator) fillSlot(
	ctx context.Context,
	flight entities.Flight,
	pos entities.CrewPosition,
	slot int,
	window entities.TimeWindow,
	byCrew map[string][]entities.RosterAssignment,
	crewOnFlight map[string]map[string]struct{},
) (*entities.RosterAssignment, *dtos.ExplanationRecord, bool, error) {
	req := eligibility.DutyRequirement{
		Position:     pos,
		AircraftType: flight.AircraftType,
		BaseAirport:  flight.Origin,
	}
	candidates, err := g.index.CandidatesFor(ctx, req, window)
	if err != nil {
		return nil, nil, false, fmt.Errorf("generate: candidates for %s/%s: %w", flight.ID, pos, err)
	}

	var (
		best           *pick
		chosen         *pick
		rejected       []dtos.RejectedAlternative
		alreadyOnBoard = crewOnFlight[flight.ID]
	)

	for _, cand := range candidates {
		if _, dup := alreadyOnBoard[cand.Crew.ID]; dup {
			continue
		}

		rc := rules.Candidate{
			Crew:     cand.Crew,
			Flight:   &flight,
			DutyType: entities.DutyFlight,
			Position: pos,
			Start:    window.Start,
			End:      window.End,
		}
		state := cand.State
		state.History = mergeHistory(state.History, byCrew[cand.Crew.ID])

		violations := g.eval.Evaluate(rc, state)
		p := &pick{cand: rc, violations: violations, confidence: Confidence(violations, g.cfg)}

		if criticalCount(violations) == 0 {
			chosen = p
			break
		}

		rejected = append(rejected, dtos.RejectedAlternative{
			CrewID: cand.Crew.ID,
			Reason: violations[0].Description,
		})
		if best == nil || p.betterThan(best) {
			best = p
		}
	}

	status := entities.AssignmentConfirmed
	if chosen == nil {
		if best == nil {
			// Pool exhausted: the slot stays open and the flight is
			// surfaced as unassigned by the caller.
			return nil, nil, false, nil
		}
		chosen = best
		status = entities.AssignmentTentative
	}

	id := newAssignmentID(flight.ID, pos, slot, chosen.cand.Crew.ID)
	explID := NewExplanationID(id)
	flightID := flight.ID
	assignment := &entities.RosterAssignment{
		ID:            id,
		CrewID:        chosen.cand.Crew.ID,
		FlightID:      &flightID,
		DutyType:      entities.DutyFlight,
		Position:      pos,
		Start:         window.Start,
		End:           window.End,
		Status:        status,
		Confidence:    chosen.confidence,
		Violations:    chosen.violations,
		ExplanationID: &explID,
		Version:       1,
	}

	expl := BuildExplanation(id, chosen.cand, chosen.violations, rejected, chosen.confidence, flight.Departure)
	return assignment, &expl, true, nil
}

type pick struct {
	cand       rules.Candidate
	violations []entities.Violation
	confidence float64
}

// betterThan prefers fewer critical violations, then higher confidence. Ties
// keep the earlier (higher-ranked) candidate.
func (p *pick) betterThan(other *pick) bool {
	pc, oc := criticalCount(p.violations), criticalCount(other.violations)
	if pc != oc {
		return pc < oc
	}
	return p.confidence > other.confidence
}

func criticalCount(violations []entities.Violation) int {
	n := 0
	for _, v := range violations {
		if v.Severity == entities.SeverityCritical {
			n++
		}
	}
	return n
}

func mergeHistory(base, session []entities.RosterAssignment) []entities.RosterAssignment {
	if len(session) == 0 {
		return base
	}
	merged := make([]entities.RosterAssignment, 0, len(base)+len(session))
	seen := make(map[string]struct{}, len(session))
	for _, a := range session {
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
	}
	for _, a := range base {
		if _, dup := seen[a.ID]; !dup {
			merged = append(merged, a)
		}
	}
	return merged
}

func markCrewOnFlight(m map[string]map[string]struct{}, flightID, crewID string) {
	set, ok := m[flightID]
	if !ok {
		set = make(map[string]struct{})
		m[flightID] = set
	}
	set[crewID] = struct{}{}
}

func slotKey(flightID string, pos entities.CrewPosition) string {
	return flightID + "|" + string(pos)
}

func newAssignmentID(flightID string, pos entities.CrewPosition, slot int, crewID string) string {
	key := fmt.Sprintf("%s|%s|%d|%s", flightID, pos, slot, crewID)
	return uuid.NewSHA1(assignmentNamespace, []byte(key)).String()
}

func newRosterID(window entities.TimeWindow, flights []entities.Flight) string {
	key := fmt.Sprintf("roster|%d|%d|%d", window.Start.Unix(), window.End.Unix(), len(flights))
	return uuid.NewSHA1(assignmentNamespace, []byte(key)).String()
}

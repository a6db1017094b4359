package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

var genBase = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixtureStore struct {
	crew   []entities.CrewMember
	states map[string]*rules.CrewState
}

func (f *fixtureStore) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	return f.crew, nil
}

func (f *fixtureStore) CrewState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error) {
	if state, ok := f.states[crewID]; ok {
		copied := *state
		return &copied, nil
	}
	return &rules.CrewState{}, nil
}

func member(id string, pos entities.CrewPosition, weeklyHours float64) entities.CrewMember {
	return entities.CrewMember{
		ID:              id,
		Position:        pos,
		BaseAirport:     "FRA",
		Status:          entities.CrewAvailable,
		WeeklyDutyHours: weeklyHours,
		LicenseExpiry:   genBase.AddDate(2, 0, 0),
		MedicalExpiry:   genBase.AddDate(1, 0, 0),
	}
}

func rated(aircraft string) *rules.CrewState {
	return &rules.CrewState{
		Certifications: []entities.Certification{{
			ID:           "cert-" + aircraft,
			Type:         "type_rating",
			AircraftType: &aircraft,
			IssuedAt:     genBase.AddDate(-1, 0, 0),
			ExpiresAt:    genBase.AddDate(1, 0, 0),
		}},
	}
}

func flightAt(id string, dep time.Time, captains, firstOfficers, attendants int) entities.Flight {
	return entities.Flight{
		ID:            id,
		FlightNumber:  id,
		Origin:        "FRA",
		Destination:   "LIS",
		AircraftType:  "A320",
		Departure:     dep,
		Arrival:       dep.Add(3 * time.Hour),
		ReqCaptains:   captains,
		ReqFirstOffs:  firstOfficers,
		ReqAttendants: attendants,
	}
}

func fullCrewStore() *fixtureStore {
	return &fixtureStore{
		crew: []entities.CrewMember{
			member("cpt-1", entities.PositionCaptain, 10),
			member("cpt-2", entities.PositionCaptain, 20),
			member("fo-1", entities.PositionFirstOfficer, 10),
			member("fa-1", entities.PositionFlightAttendant, 10),
			member("fa-2", entities.PositionFlightAttendant, 15),
		},
		states: map[string]*rules.CrewState{
			"cpt-1": rated("A320"),
			"cpt-2": rated("A320"),
			"fo-1":  rated("A320"),
			"fa-1":  {},
			"fa-2":  {},
		},
	}
}

func newTestGenerator(store eligibility.Store) *Generator {
	index := eligibility.New(store, common.NewCacheService(60, 600))
	return NewGenerator(config.DefaultEngineConfig(), index)
}

func genWindow() entities.TimeWindow {
	return entities.TimeWindow{Start: genBase, End: genBase.Add(24 * time.Hour)}
}

func TestGenerateFillsEverySlot(t *testing.T) {
	g := newTestGenerator(fullCrewStore())

	result, explanations, err := g.Generate(context.Background(), GenerateInput{
		Window:  genWindow(),
		Flights: []entities.Flight{flightAt("flt-1", genBase, 1, 1, 2)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Assignments) != 4 {
		t.Fatalf("expected 4 assignments, got %d", len(result.Assignments))
	}
	if len(explanations) != 4 {
		t.Fatalf("every assignment needs an explanation, got %d", len(explanations))
	}
	for _, a := range result.Assignments {
		if a.Status != entities.AssignmentConfirmed {
			t.Fatalf("clean candidates must be confirmed, got %s for %s", a.Status, a.ID)
		}
		if a.Confidence != 1.0 {
			t.Fatalf("violation-free assignment must score 1.0, got %f", a.Confidence)
		}
		if a.ExplanationID == nil {
			t.Fatalf("assignment %s has no explanation id", a.ID)
		}
	}
	if result.Metrics.UnassignedFlights != 0 || result.Metrics.Partial {
		t.Fatalf("unexpected metrics: %+v", result.Metrics)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	run := func() ([]byte, error) {
		g := newTestGenerator(fullCrewStore())
		result, _, err := g.Generate(context.Background(), GenerateInput{
			Window: genWindow(),
			Flights: []entities.Flight{
				flightAt("flt-2", genBase.Add(6*time.Hour), 1, 0, 1),
				flightAt("flt-1", genBase, 1, 1, 2),
			},
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}

	first, err := run()
	if err != nil {
		t.Fatal(err)
	}
	second, err := run()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("identical inputs must produce identical output\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestGenerateEmptyFlightSet(t *testing.T) {
	g := newTestGenerator(fullCrewStore())

	result, _, err := g.Generate(context.Background(), GenerateInput{Window: genWindow()})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Assignments) != 0 {
		t.Fatalf("expected empty roster, got %+v", result.Assignments)
	}
	if result.Metrics.TotalFlights != 0 || result.Metrics.Partial {
		t.Fatalf("unexpected metrics: %+v", result.Metrics)
	}
}

func TestGenerateReportsUnassignedFlights(t *testing.T) {
	// No flight attendants exist at all.
	store := &fixtureStore{
		crew: []entities.CrewMember{
			member("cpt-1", entities.PositionCaptain, 10),
		},
		states: map[string]*rules.CrewState{"cpt-1": rated("A320")},
	}
	g := newTestGenerator(store)

	result, _, err := g.Generate(context.Background(), GenerateInput{
		Window:  genWindow(),
		Flights: []entities.Flight{flightAt("flt-1", genBase, 1, 0, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Assignments) != 1 {
		t.Fatalf("captain slot should still fill, got %d assignments", len(result.Assignments))
	}
	if result.Metrics.UnassignedFlights != 1 || result.Metrics.UnassignedFlightIDs[0] != "flt-1" {
		t.Fatalf("flight with an open slot must surface as unassigned: %+v", result.Metrics)
	}
}

func TestGenerateAssignsLeastBadAsTentative(t *testing.T) {
	// The only captain is double-booked for the whole window.
	store := &fixtureStore{
		crew: []entities.CrewMember{member("cpt-1", entities.PositionCaptain, 10)},
		states: map[string]*rules.CrewState{
			"cpt-1": func() *rules.CrewState {
				s := rated("A320")
				s.History = []entities.RosterAssignment{{
					ID:     "a-existing",
					CrewID: "cpt-1",
					Start:  genBase.Add(-time.Hour),
					End:    genBase.Add(12 * time.Hour),
					Status: entities.AssignmentConfirmed,
				}}
				return s
			}(),
		},
	}
	g := newTestGenerator(store)

	result, explanations, err := g.Generate(context.Background(), GenerateInput{
		Window:  genWindow(),
		Flights: []entities.Flight{flightAt("flt-1", genBase, 1, 0, 0)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Assignments) != 1 {
		t.Fatalf("non-empty pool must always produce an assignment, got %d", len(result.Assignments))
	}
	a := result.Assignments[0]
	if a.Status != entities.AssignmentTentative {
		t.Fatalf("critical violations must mark the assignment tentative, got %s", a.Status)
	}
	if len(a.Violations) == 0 {
		t.Fatal("tentative assignment must carry its violations")
	}
	if a.Confidence >= 1.0 {
		t.Fatalf("violations must lower confidence, got %f", a.Confidence)
	}
	if len(explanations) != 1 || len(explanations[0].RulesTriggered) == 0 {
		t.Fatalf("explanation must list triggered rules, got %+v", explanations)
	}
}

func TestGenerateSkipsAlreadyFilledSlots(t *testing.T) {
	g := newTestGenerator(fullCrewStore())

	flightID := "flt-1"
	existing := entities.RosterAssignment{
		ID:       "a-existing",
		CrewID:   "cpt-2",
		FlightID: &flightID,
		DutyType: entities.DutyFlight,
		Position: entities.PositionCaptain,
		Start:    genBase,
		End:      genBase.Add(3 * time.Hour),
		Status:   entities.AssignmentConfirmed,
	}

	result, _, err := g.Generate(context.Background(), GenerateInput{
		Window:   genWindow(),
		Flights:  []entities.Flight{flightAt(flightID, genBase, 1, 0, 0)},
		Existing: []entities.RosterAssignment{existing},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Assignments) != 0 {
		t.Fatalf("filled slot must not be refilled, got %+v", result.Assignments)
	}
}

func TestGenerateNoDoubleBookingWithinRun(t *testing.T) {
	// One captain, two overlapping flights: the second pick must see the
	// first assignment and degrade to tentative with an overlap violation.
	store := &fixtureStore{
		crew:   []entities.CrewMember{member("cpt-1", entities.PositionCaptain, 10)},
		states: map[string]*rules.CrewState{"cpt-1": rated("A320")},
	}
	g := newTestGenerator(store)

	result, _, err := g.Generate(context.Background(), GenerateInput{
		Window: genWindow(),
		Flights: []entities.Flight{
			flightAt("flt-1", genBase, 1, 0, 0),
			flightAt("flt-2", genBase.Add(time.Hour), 1, 0, 0),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result.Assignments))
	}
	first, second := result.Assignments[0], result.Assignments[1]
	if first.Status != entities.AssignmentConfirmed {
		t.Fatalf("first pick should be clean, got %s", first.Status)
	}
	if second.Status != entities.AssignmentTentative {
		t.Fatalf("second pick overlaps and must be tentative, got %s", second.Status)
	}
	found := false
	for _, v := range second.Violations {
		if v.Type == entities.ViolationOverlap && v.Severity == entities.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overlap violation on second pick, got %+v", second.Violations)
	}
}

func TestGeneratePartialResultOnExpiredContext(t *testing.T) {
	g := newTestGenerator(fullCrewStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, _, err := g.Generate(ctx, GenerateInput{
		Window: genWindow(),
		Flights: []entities.Flight{
			flightAt("flt-1", genBase, 1, 0, 0),
			flightAt("flt-2", genBase.Add(6*time.Hour), 1, 0, 0),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !result.Metrics.Partial {
		t.Fatal("expired context must flag the result partial")
	}
	if result.Metrics.UnassignedFlights != 2 {
		t.Fatalf("unprocessed flights must be reported unassigned, got %+v", result.Metrics)
	}
	if len(result.Assignments) != 0 {
		t.Fatalf("nothing was processed, got %+v", result.Assignments)
	}
}

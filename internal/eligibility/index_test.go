package eligibility

import (
	"context"
	"testing"
	"time"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

var idxBase = time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)

// mockStore serves canned crew and state and counts state lookups so tests
// can observe cache behavior.
type mockStore struct {
	crew       []entities.CrewMember
	states     map[string]*rules.CrewState
	stateCalls int
}

func (m *mockStore) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	return m.crew, nil
}

func (m *mockStore) CrewState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error) {
	m.stateCalls++
	if state, ok := m.states[crewID]; ok {
		return state, nil
	}
	return &rules.CrewState{}, nil
}

func captain(id, base string, weeklyHours float64) entities.CrewMember {
	return entities.CrewMember{
		ID:              id,
		Position:        entities.PositionCaptain,
		BaseAirport:     base,
		Status:          entities.CrewAvailable,
		WeeklyDutyHours: weeklyHours,
	}
}

func ratedState(aircraft string) *rules.CrewState {
	return &rules.CrewState{
		Certifications: []entities.Certification{{
			ID:           "cert-" + aircraft,
			Type:         "type_rating",
			AircraftType: &aircraft,
			IssuedAt:     idxBase.AddDate(-1, 0, 0),
			ExpiresAt:    idxBase.AddDate(1, 0, 0),
		}},
	}
}

func testWindow() entities.TimeWindow {
	return entities.TimeWindow{Start: idxBase, End: idxBase.Add(3 * time.Hour)}
}

func TestCandidatesRankedByWeeklyHoursThenBaseThenID(t *testing.T) {
	store := &mockStore{
		crew: []entities.CrewMember{
			captain("crew-c", "FRA", 20),
			captain("crew-a", "MUC", 10),
			captain("crew-b", "FRA", 10),
		},
		states: map[string]*rules.CrewState{
			"crew-a": ratedState("A320"),
			"crew-b": ratedState("A320"),
			"crew-c": ratedState("A320"),
		},
	}
	ix := New(store, common.NewCacheService(60, 600))

	req := DutyRequirement{Position: entities.PositionCaptain, AircraftType: "A320", BaseAirport: "FRA"}
	cands, err := ix.CandidatesFor(context.Background(), req, testWindow())
	if err != nil {
		t.Fatal(err)
	}

	got := make([]string, 0, len(cands))
	for _, c := range cands {
		got = append(got, c.Crew.ID)
	}
	want := []string{"crew-b", "crew-a", "crew-c"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestUnassignableAndUnratedCrewExcluded(t *testing.T) {
	sick := captain("crew-sick", "FRA", 0)
	sick.Status = entities.CrewSickLeave

	store := &mockStore{
		crew: []entities.CrewMember{
			sick,
			captain("crew-unrated", "FRA", 0),
			captain("crew-ok", "FRA", 0),
		},
		states: map[string]*rules.CrewState{
			"crew-unrated": ratedState("B737"),
			"crew-ok":      ratedState("A320"),
		},
	}
	ix := New(store, common.NewCacheService(60, 600))

	req := DutyRequirement{Position: entities.PositionCaptain, AircraftType: "A320", BaseAirport: "FRA"}
	cands, err := ix.CandidatesFor(context.Background(), req, testWindow())
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].Crew.ID != "crew-ok" {
		t.Fatalf("expected only crew-ok, got %+v", cands)
	}
}

func TestApprovedLeaveExcludesFromIndex(t *testing.T) {
	state := ratedState("A320")
	state.Leaves = []entities.LeaveRequest{{
		ID:     "lv-1",
		Start:  idxBase.Add(-time.Hour),
		End:    idxBase.Add(6 * time.Hour),
		Status: entities.LeaveApproved,
	}}

	store := &mockStore{
		crew:   []entities.CrewMember{captain("crew-leave", "FRA", 0)},
		states: map[string]*rules.CrewState{"crew-leave": state},
	}
	ix := New(store, common.NewCacheService(60, 600))

	req := DutyRequirement{Position: entities.PositionCaptain, AircraftType: "A320", BaseAirport: "FRA"}
	cands, err := ix.CandidatesFor(context.Background(), req, testWindow())
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 0 {
		t.Fatalf("crew on approved leave must not be indexed, got %+v", cands)
	}
}

func TestSnapshotCachedUntilInvalidated(t *testing.T) {
	store := &mockStore{
		crew:   []entities.CrewMember{captain("crew-1", "FRA", 0)},
		states: map[string]*rules.CrewState{"crew-1": ratedState("A320")},
	}
	ix := New(store, common.NewCacheService(60, 600))

	req := DutyRequirement{Position: entities.PositionCaptain, AircraftType: "A320", BaseAirport: "FRA"}
	if _, err := ix.CandidatesFor(context.Background(), req, testWindow()); err != nil {
		t.Fatal(err)
	}
	first := store.stateCalls

	if _, err := ix.CandidatesFor(context.Background(), req, testWindow()); err != nil {
		t.Fatal(err)
	}
	if store.stateCalls != first {
		t.Fatalf("second read must come from cache, calls went %d -> %d", first, store.stateCalls)
	}

	ix.InvalidateCrew("crew-1")
	if _, err := ix.CandidatesFor(context.Background(), req, testWindow()); err != nil {
		t.Fatal(err)
	}
	if store.stateCalls == first {
		t.Fatal("invalidation must force a rebuild")
	}
}

func TestInvalidateCrewIsPointInvalidation(t *testing.T) {
	store := &mockStore{
		crew: []entities.CrewMember{
			captain("crew-1", "FRA", 0),
			{
				ID:          "crew-fo",
				Position:    entities.PositionFirstOfficer,
				BaseAirport: "FRA",
				Status:      entities.CrewAvailable,
			},
		},
		states: map[string]*rules.CrewState{
			"crew-1":  ratedState("A320"),
			"crew-fo": ratedState("A320"),
		},
	}
	ix := New(store, common.NewCacheService(60, 600))

	cptReq := DutyRequirement{Position: entities.PositionCaptain, AircraftType: "A320", BaseAirport: "FRA"}
	foReq := DutyRequirement{Position: entities.PositionFirstOfficer, AircraftType: "A320", BaseAirport: "FRA"}

	if _, err := ix.CandidatesFor(context.Background(), cptReq, testWindow()); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.CandidatesFor(context.Background(), foReq, testWindow()); err != nil {
		t.Fatal(err)
	}
	before := store.stateCalls

	// Dropping the captain must leave the first-officer snapshot cached.
	ix.InvalidateCrew("crew-1")
	if _, err := ix.CandidatesFor(context.Background(), foReq, testWindow()); err != nil {
		t.Fatal(err)
	}
	if store.stateCalls != before {
		t.Fatalf("first-officer snapshot must survive captain invalidation, calls went %d -> %d", before, store.stateCalls)
	}
}

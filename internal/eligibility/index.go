package eligibility

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

// DutyRequirement describes the slot a candidate list is being built for.
// AircraftType is empty for non-flight duties.
type DutyRequirement struct {
	Position     entities.CrewPosition
	AircraftType string
	BaseAirport  string
}

// Candidate pairs an eligible crew member with the state snapshot the
// constraint evaluator needs. Snapshots are never reused across window
// boundaries without a rebuild.
type Candidate struct {
	Crew  entities.CrewMember
	State rules.CrewState
}

// Store is the read access the index builds snapshots from.
type Store interface {
	ListCrew(ctx context.Context) ([]entities.CrewMember, error)
	CrewState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error)
}

// Index maintains, per duty requirement and time window, the ranked set of
// crew eligible for a duty. Window snapshots are cached; rebuilds of the same
// snapshot are deduplicated; invalidation is per crew member so disruption
// handling never pays for a full rebuild.
type Index struct {
	store Store
	cache common.CacheInterface
	group singleflight.Group
	ttl   time.Duration

	mu       sync.Mutex
	crewKeys map[string]map[string]struct{}
}

func New(store Store, cache common.CacheInterface) *Index {
	return &Index{
		store:    store,
		cache:    cache,
		ttl:      5 * time.Minute,
		crewKeys: make(map[string]map[string]struct{}),
	}
}

func snapshotKey(req DutyRequirement, window entities.TimeWindow) string {
	return fmt.Sprintf("%s%s|%s|%s|%d|%d",
		constants.CachePrefixEligibility,
		req.Position, req.AircraftType, req.BaseAirport,
		window.Start.Unix(), window.End.Unix())
}

// CandidatesFor returns the eligible crew for the requirement and window,
// ranked by ascending current-week duty hours, then base-airport match, then
// crew id. The ordering is fully rule-driven so generation stays
// deterministic.
func (ix *Index) CandidatesFor(ctx context.Context, req DutyRequirement, window entities.TimeWindow) ([]Candidate, error) {
	key := snapshotKey(req, window)

	if v, found := ix.cache.Get(key); found {
		if cands, ok := v.([]Candidate); ok {
			return cands, nil
		}
	}

	v, err, _ := ix.group.Do(key, func() (any, error) {
		return ix.build(ctx, req, window, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Candidate), nil
}

func (ix *Index) build(ctx context.Context, req DutyRequirement, window entities.TimeWindow, key string) ([]Candidate, error) {
	crew, err := ix.store.ListCrew(ctx)
	if err != nil {
		return nil, fmt.Errorf("eligibility: list crew: %w", err)
	}

	candidates := make([]Candidate, 0, len(crew))
	for _, c := range crew {
		if c.Position != req.Position || !c.Status.Assignable() {
			continue
		}

		state, err := ix.store.CrewState(ctx, c.ID, window)
		if err != nil {
			return nil, fmt.Errorf("eligibility: state for crew %s: %w", c.ID, err)
		}

		if leaveBlocked(state.Leaves, window) {
			continue
		}
		if req.AircraftType != "" && !typeRated(state.Certifications, req.AircraftType, window.Start) {
			continue
		}

		candidates = append(candidates, Candidate{Crew: c, State: *state})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Crew, candidates[j].Crew
		if a.WeeklyDutyHours != b.WeeklyDutyHours {
			return a.WeeklyDutyHours < b.WeeklyDutyHours
		}
		aBase := a.BaseAirport == req.BaseAirport
		bBase := b.BaseAirport == req.BaseAirport
		if aBase != bBase {
			return aBase
		}
		return a.ID < b.ID
	})

	ix.cache.Set(key, candidates, ix.ttl)
	ix.track(candidates, key)
	return candidates, nil
}

// leaveBlocked excludes crew with approved leave overlapping the window;
// pending and rejected requests do not block.
func leaveBlocked(leaves []entities.LeaveRequest, window entities.TimeWindow) bool {
	for _, l := range leaves {
		if l.Blocks(window) {
			return true
		}
	}
	return false
}

// typeRated requires at least one certification covering the aircraft type
// at the duty's start. A certification expiring at or before that instant
// does not count.
func typeRated(certs []entities.Certification, aircraftType string, at time.Time) bool {
	for _, cert := range certs {
		if cert.Covers(aircraftType, at) {
			return true
		}
	}
	return false
}

func (ix *Index) track(candidates []Candidate, key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, c := range candidates {
		keys, ok := ix.crewKeys[c.Crew.ID]
		if !ok {
			keys = make(map[string]struct{})
			ix.crewKeys[c.Crew.ID] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateCrew drops every cached snapshot containing the crew member.
// Called on assignment status changes, leave decisions, certification expiry
// boundary crossings and explicit availability restoration.
func (ix *Index) InvalidateCrew(crewID string) {
	ix.mu.Lock()
	keys := ix.crewKeys[crewID]
	delete(ix.crewKeys, crewID)
	ix.mu.Unlock()

	for key := range keys {
		ix.cache.Delete(key)
	}
}

// Invalidate drops every cached snapshot.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	all := make(map[string]struct{})
	for _, keys := range ix.crewKeys {
		for key := range keys {
			all[key] = struct{}{}
		}
	}
	ix.crewKeys = make(map[string]map[string]struct{})
	ix.mu.Unlock()

	for key := range all {
		ix.cache.Delete(key)
	}
}

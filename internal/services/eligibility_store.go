package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

// historyLookback extends every state read backwards so the 28-day trailing
// duty-hour rule always sees a full window.
const historyLookback = 28 * 24 * time.Hour

const crewStateTTL = 2 * time.Minute

// EligibilityStore assembles the per-crew snapshots the eligibility index and
// the resolver consume. Reads go to Postgres; the last good snapshot is kept
// in cache so a repository failure degrades to slightly stale data instead of
// failing the whole generation run.
type EligibilityStore struct {
	crewRepo *repositories.CrewRepository
	rosters  *repositories.RosterRepository
	leaves   *repositories.LeaveRepository
	certs    *repositories.CertificationRepository
	cache    common.CacheInterface
	degraded atomic.Bool
}

func NewEligibilityStore(
	crewRepo *repositories.CrewRepository,
	rosters *repositories.RosterRepository,
	leaves *repositories.LeaveRepository,
	certs *repositories.CertificationRepository,
	cache common.CacheInterface,
) *EligibilityStore {
	return &EligibilityStore{
		crewRepo: crewRepo,
		rosters:  rosters,
		leaves:   leaves,
		certs:    certs,
		cache:    cache,
	}
}

func (s *EligibilityStore) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	crew, err := s.crewRepo.ListCrew(ctx)
	if err != nil {
		cacheKey := string(constants.CachePrefixCrewState) + "all"
		if v, found := s.cache.Get(cacheKey); found {
			if cached, ok := v.([]entities.CrewMember); ok {
				logging.Warn("Crew list read failed, serving cached snapshot", "error", err)
				s.degraded.Store(true)
				return cached, nil
			}
		}
		return nil, err
	}

	s.cache.Set(string(constants.CachePrefixCrewState)+"all", crew, crewStateTTL)
	return crew, nil
}

// CrewState loads certifications, leave and assignment history for one crew
// member over the window extended by the trailing-28-day lookback.
func (s *EligibilityStore) CrewState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error) {
	cacheKey := stateKey(crewID, window)

	state, err := s.loadState(ctx, crewID, window)
	if err != nil {
		if v, found := s.cache.Get(cacheKey); found {
			if cached, ok := v.(rules.CrewState); ok {
				logging.Warn("Crew state read failed, serving cached snapshot",
					"crew_id", crewID, "error", err)
				s.degraded.Store(true)
				return &cached, nil
			}
		}
		return nil, err
	}

	s.cache.Set(cacheKey, *state, crewStateTTL)
	return state, nil
}

func (s *EligibilityStore) loadState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error) {
	certs, err := s.certs.ForCrew(ctx, crewID)
	if err != nil {
		return nil, fmt.Errorf("store: certifications for %s: %w", crewID, err)
	}

	leaves, err := s.leaves.ApprovedForCrew(ctx, crewID, window)
	if err != nil {
		return nil, fmt.Errorf("store: leave for %s: %w", crewID, err)
	}

	history, err := s.rosters.ListHistoryByCrew(ctx, crewID,
		window.Start.Add(-historyLookback), window.End.Add(historyLookback))
	if err != nil {
		return nil, fmt.Errorf("store: assignment history for %s: %w", crewID, err)
	}

	return &rules.CrewState{
		Certifications: certs,
		Leaves:         leaves,
		History:        history,
	}, nil
}

// ConsumeDegraded reports whether any read since the last call fell back to a
// cached snapshot, and clears the flag.
func (s *EligibilityStore) ConsumeDegraded() bool {
	return s.degraded.Swap(false)
}

func stateKey(crewID string, window entities.TimeWindow) string {
	return fmt.Sprintf("%s%s|%d|%d",
		constants.CachePrefixCrewState, crewID, window.Start.Unix(), window.End.Unix())
}

package api

import (
	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/db"
	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/engine"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/metrics"
	"aero-rhythm/crewops/internal/services"
)

type Repositories struct {
	Crew         *repositories.CrewRepository
	Flights      *repositories.FlightRepository
	Rosters      *repositories.RosterRepository
	Leaves       *repositories.LeaveRepository
	Certs        *repositories.CertificationRepository
	Keys         *repositories.KeysRepo
	Disruptions  *repositories.DisruptionRepository
	Explanations *repositories.ExplanationRepository
	Audit        *repositories.AuditRepository
}

type Services struct {
	Cache       common.CacheInterface
	Store       *services.EligibilityStore
	Index       *eligibility.Index
	Locks       *engine.PartitionLocks
	Roster      *services.RosterService
	Disruption  *services.DisruptionService
	Crew        *services.CrewService
	Explanation *services.ExplanationService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories, the engine and the service layer.
// render may be nil when no prose renderer is running.
func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry, render services.RenderEnqueue) (*Dependencies, error) {
	repos := &Repositories{
		Crew:         repositories.NewCrewRepository(db.DB),
		Flights:      repositories.NewFlightRepository(db.DB),
		Rosters:      repositories.NewRosterRepository(db.DB),
		Leaves:       repositories.NewLeaveRepository(db.DB),
		Certs:        repositories.NewCertificationRepository(db.DB),
		Keys:         repositories.NewApiKeysRepo(db.DB),
		Disruptions:  repositories.NewDisruptionRepository(db.PgDB),
		Explanations: repositories.NewExplanationRepository(db.PgDB),
		Audit:        repositories.NewAuditRepository(db.PgDB),
	}

	var cache common.CacheInterface
	if cfg.RedisAddr != "" {
		redisCache, err := common.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
			cache = common.NewCacheService(300, 600)
		} else {
			cache = redisCache
		}
	} else {
		cache = common.NewCacheService(300, 600)
	}

	store := services.NewEligibilityStore(repos.Crew, repos.Rosters, repos.Leaves, repos.Certs, cache)
	index := eligibility.New(store, cache)
	locks := engine.NewPartitionLocks()

	generator := engine.NewGenerator(cfg.Engine, index)
	resolver := engine.NewResolver(cfg.Engine, index, store)

	svcs := &Services{
		Cache: cache,
		Store: store,
		Index: index,
		Locks: locks,
		Roster: services.NewRosterService(
			cfg.Engine, generator, index, store,
			repos.Rosters, repos.Flights, repos.Explanations, repos.Audit,
			locks, cache, metricsReg, render,
		),
		Disruption: services.NewDisruptionService(
			cfg.Engine, resolver, index, store,
			repos.Disruptions, repos.Rosters, repos.Flights, repos.Audit,
			locks, cache, metricsReg,
		),
		Crew:        services.NewCrewService(repos.Crew, repos.Audit, index, metricsReg, cfg.Engine.ConflictRetries),
		Explanation: services.NewExplanationService(repos.Explanations),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}

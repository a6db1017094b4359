package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"aero-rhythm/crewops/internal/api"
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/db"
	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/jobs"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/metrics"
	"aero-rhythm/crewops/internal/middleware"
	"aero-rhythm/crewops/internal/providers"
	"aero-rhythm/crewops/internal/workers"
)

func RegisterRoutes(cfg *config.Config, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// The explanation worker starts before the DI container so generation
	// runs can enqueue prose renders from the first request.
	provider := providers.NewNarrativeProvider(cfg.NarrativeURL, cfg.NarrativeAPIKey)
	explRepo := repositories.NewExplanationRepository(db.PgDB)
	workersContainer := workers.InitWorkers(context.Background(), explRepo, provider)

	deps, err := api.InitDependencies(cfg, metricsReg, workersContainer.Explanations.Enqueue)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	handlers := api.NewHandlers(deps)

	jobs.InitializeJobs(
		context.Background(),
		deps.Repo.Certs,
		deps.Services.Index,
		metricsReg,
	)

	RegisterAPIRoutes(r, deps, handlers)

	return r
}

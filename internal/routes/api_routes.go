package routes

import (
	"github.com/go-chi/chi/v5"

	"aero-rhythm/crewops/internal/api"
	"aero-rhythm/crewops/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimitMiddleware)
		v1.Use(middleware.APIKeyMiddleware(deps.Repo.Keys, deps.Services.Cache))

		// Roster generation and reads
		v1.Post("/rosters/generate", handlers.GenerateRoster())
		v1.Get("/rosters", handlers.ListRosters())
		v1.Post("/rosters/{roster_id}/optimize", handlers.OptimizeRoster())

		// Disruption lifecycle: report, preview, apply, resolve
		v1.Post("/disruptions", handlers.ReportDisruption())
		v1.Get("/disruptions", handlers.ListDisruptions())
		v1.Post("/disruptions/{event_id}/apply", handlers.ApplyRecommendation())
		v1.Post("/disruptions/{event_id}/resolve", handlers.ResolveDisruption())

		// Assignment explanations
		v1.Get("/explanations/{explanation_id}", handlers.GetExplanation())

		// Crew availability
		v1.Get("/crew", handlers.ListCrew())
		v1.Get("/crew/{crew_id}", handlers.GetCrew())
		v1.Patch("/crew/{crew_id}/status", handlers.UpdateCrewStatus())
	})
}

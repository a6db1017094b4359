package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/models/dtos"
)

// GetCrew handles GET /api/v1/crew/{crew_id}
func (h *Handlers) GetCrew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		crewID := chi.URLParam(r, "crew_id")
		crew, err := h.deps.Services.Crew.GetCrew(r.Context(), crewID)
		if err != nil {
			respondServiceError(w, initTime, err, "Crew lookup failed")
			return
		}

		common.RespondSuccess(w, initTime, "Crew fetched", crew)
	}
}

// ListCrew handles GET /api/v1/crew
func (h *Handlers) ListCrew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		crew, err := h.deps.Services.Crew.ListCrew(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, "Crew lookup failed")
			return
		}

		common.RespondSuccess(w, initTime, "Crew fetched", crew)
	}
}

// UpdateCrewStatus handles PATCH /api/v1/crew/{crew_id}/status
func (h *Handlers) UpdateCrewStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CrewStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		crewID := chi.URLParam(r, "crew_id")
		crew, err := h.deps.Services.Crew.UpdateStatus(r.Context(), crewID, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Crew status update failed")
			return
		}

		common.RespondSuccess(w, initTime, "Crew status updated", crew)
	}
}

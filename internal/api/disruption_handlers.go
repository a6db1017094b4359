package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/models/dtos"
)

// ReportDisruption handles POST /api/v1/disruptions
func (h *Handlers) ReportDisruption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.DisruptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := h.deps.Services.Disruption.HandleDisruption(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Disruption handling failed")
			return
		}

		common.RespondSuccess(w, initTime, "Disruption recorded", resp, http.StatusCreated)
	}
}

// ListDisruptions handles GET /api/v1/disruptions
func (h *Handlers) ListDisruptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)

		events, err := h.deps.Services.Disruption.ListDisruptions(r.Context(), limit, offset)
		if err != nil {
			respondServiceError(w, initTime, err, "Disruption lookup failed")
			return
		}

		common.RespondSuccess(w, initTime, "Disruptions fetched", events)
	}
}

// ApplyRecommendation handles POST /api/v1/disruptions/{event_id}/apply
func (h *Handlers) ApplyRecommendation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ApplyRecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		eventID := chi.URLParam(r, "event_id")
		applied, err := h.deps.Services.Disruption.ApplyRecommendation(r.Context(), eventID, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Recommendation apply failed")
			return
		}

		common.RespondSuccess(w, initTime, "Recommendation applied", applied)
	}
}

// ResolveDisruption handles POST /api/v1/disruptions/{event_id}/resolve
func (h *Handlers) ResolveDisruption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		eventID := chi.URLParam(r, "event_id")
		event, err := h.deps.Services.Disruption.ResolveDisruption(r.Context(), eventID)
		if err != nil {
			respondServiceError(w, initTime, err, "Disruption resolve failed")
			return
		}

		common.RespondSuccess(w, initTime, "Disruption resolved", event)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
)

// GenerateRoster handles POST /api/v1/rosters/generate
func (h *Handlers) GenerateRoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.GenerateRosterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := h.deps.Services.Roster.GenerateRoster(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Roster generation failed")
			return
		}

		common.RespondSuccess(w, initTime, "Roster generated", result, http.StatusCreated)
	}
}

// ListRosters handles GET /api/v1/rosters?start=...&end=...
func (h *Handlers) ListRosters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		window, err := parseWindow(r)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid window", http.StatusBadRequest)
			return
		}
		limit := queryInt(r, "limit", 100)
		offset := queryInt(r, "offset", 0)

		resp, err := h.deps.Services.Roster.GetRosters(r.Context(), window, limit, offset)
		if err != nil {
			respondServiceError(w, initTime, err, "Roster lookup failed")
			return
		}

		common.RespondSuccess(w, initTime, "Rosters fetched", resp)
	}
}

// OptimizeRoster handles POST /api/v1/rosters/{roster_id}/optimize
func (h *Handlers) OptimizeRoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rosterID := chi.URLParam(r, "roster_id")
		result, err := h.deps.Services.Roster.OptimizeRoster(r.Context(), rosterID)
		if err != nil {
			respondServiceError(w, initTime, err, "Roster optimization failed")
			return
		}

		common.RespondSuccess(w, initTime, "Roster optimized", result)
	}
}

func parseWindow(r *http.Request) (entities.TimeWindow, error) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		return entities.TimeWindow{}, err
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		return entities.TimeWindow{}, err
	}
	return entities.TimeWindow{Start: start, End: end}, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

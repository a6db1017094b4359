package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aero-rhythm/crewops/internal/common"
)

// GetExplanation handles GET /api/v1/explanations/{explanation_id}
func (h *Handlers) GetExplanation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		explanationID := chi.URLParam(r, "explanation_id")
		resp, err := h.deps.Services.Explanation.GetExplanation(r.Context(), explanationID)
		if err != nil {
			respondServiceError(w, initTime, err, "Explanation lookup failed")
			return
		}

		common.RespondSuccess(w, initTime, "Explanation fetched", resp)
	}
}

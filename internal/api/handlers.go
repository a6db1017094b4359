package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/engine"
)

// Handlers holds all HTTP handlers with their dependencies
type Handlers struct {
	deps *Dependencies
}

func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{deps: deps}
}

// respondServiceError maps service-layer errors onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error, fallback string) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		common.RespondError(w, initTime, err, fallback, http.StatusBadRequest)
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, sql.ErrNoRows),
		errors.Is(err, gorm.ErrRecordNotFound):
		common.RespondError(w, initTime, err, fallback, http.StatusNotFound)
	case errors.Is(err, engine.ErrConflict):
		common.RespondError(w, initTime, err, fallback, http.StatusConflict)
	default:
		common.RespondError(w, initTime, err, fallback, http.StatusInternalServerError)
	}
}

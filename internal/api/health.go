package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		dbConnected := true
		if err := db.Ping(); err != nil {
			status = "down"
			dbConnected = false
		}

		resp := entities.HealthStatus{
			Status:      status,
			DBConnected: dbConnected,
			UpSince:     upSince,
			UptimeSec:   int64(time.Since(upSince).Seconds()),
		}

		w.Header().Set("Content-Type", "application/json")
		if !dbConnected {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

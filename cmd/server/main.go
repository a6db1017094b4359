package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/db"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Crew rostering engine starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx
	if err := db.InitPostgres(cfg); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM
	if _, err := db.InitPostgresORM(db.DSN(cfg)); err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := db.AutoMigrate(); err != nil {
		logging.Error("Schema migration failed", "error", err.Error())
		log.Fatalf("Schema migration failed: %v", err)
	}

	if cfg.SeedData {
		if err := db.LoadSeedData(context.Background()); err != nil {
			logging.Error("Seed data load failed", "error", err.Error())
			log.Fatalf("Seed data load failed: %v", err)
		}
	}

	upSince := time.Now()

	router := routes.RegisterRoutes(cfg, upSince)

	// Metrics endpoint lives outside the Chi router so it skips the API
	// middleware chain.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	addr := ":" + cfg.Port
	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.AppEnv,
	)
	log.Fatal(http.ListenAndServe(addr, mux))
}

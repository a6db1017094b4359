package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EngineConfig carries every tunable the constraint evaluator and generator
// read. It is passed by value at call time so evaluation stays pure and
// testable; nothing in the engine reads ambient globals.
type EngineConfig struct {
	// Duty-hour ceilings over the trailing 7-day and 28-day windows.
	MaxWeeklyDutyHours  float64
	MaxMonthlyDutyHours float64

	// Minimum rest between the end of the preceding duty and the next start.
	MinRestHours float64

	// Certifications expiring within this many days of an active assignment
	// raise a medium, non-blocking violation.
	CertWarningDays int

	// Confidence penalty per violation severity.
	PenaltyCritical float64
	PenaltyHigh     float64
	PenaltyMedium   float64
	PenaltyLow      float64

	// GenerationBudget bounds a single generation or resolution request;
	// on expiry the partial result computed so far is returned.
	GenerationBudget time.Duration

	// ConflictRetries bounds optimistic-lock retries before surfacing a
	// conflict error.
	ConflictRetries int
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxWeeklyDutyHours:  60,
		MaxMonthlyDutyHours: 190,
		MinRestHours:        10,
		CertWarningDays:     30,
		PenaltyCritical:     0.5,
		PenaltyHigh:         0.25,
		PenaltyMedium:       0.1,
		PenaltyLow:          0.02,
		GenerationBudget:    30 * time.Second,
		ConflictRetries:     3,
	}
}

type Config struct {
	AppEnv string
	Port   string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	RedisAddr     string
	RedisPassword string

	// Narrative service renders structured explanations into prose.
	NarrativeURL    string
	NarrativeAPIKey string

	SeedData bool

	Engine EngineConfig
}

// Load reads configuration from the environment. A .env file is honored in
// development; missing values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		PGHost:          getEnv("PG_HOST", "localhost"),
		PGPort:          getEnv("PG_PORT", "5432"),
		PGUser:          getEnv("PG_USER", "crew_user"),
		PGPassword:      getEnv("PG_PASSWORD", ""),
		PGDatabase:      getEnv("PG_DB", "crew_rostering"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		NarrativeURL:    getEnv("NARRATIVE_URL", ""),
		NarrativeAPIKey: getEnv("NARRATIVE_API_KEY", ""),
		SeedData:        getEnvBool("USE_SEED_DATA", false),
		Engine:          DefaultEngineConfig(),
	}

	cfg.Engine.MaxWeeklyDutyHours = getEnvFloat("MAX_WEEKLY_DUTY_HOURS", cfg.Engine.MaxWeeklyDutyHours)
	cfg.Engine.MaxMonthlyDutyHours = getEnvFloat("MAX_MONTHLY_DUTY_HOURS", cfg.Engine.MaxMonthlyDutyHours)
	cfg.Engine.MinRestHours = getEnvFloat("MIN_REST_HOURS", cfg.Engine.MinRestHours)
	cfg.Engine.CertWarningDays = getEnvInt("CERT_WARNING_DAYS", cfg.Engine.CertWarningDays)
	cfg.Engine.ConflictRetries = getEnvInt("CONFLICT_RETRIES", cfg.Engine.ConflictRetries)
	if secs := getEnvInt("GENERATION_BUDGET_SECONDS", 0); secs > 0 {
		cfg.Engine.GenerationBudget = time.Duration(secs) * time.Second
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

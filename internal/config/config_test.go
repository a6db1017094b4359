package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.AppEnv != "development" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Engine.MaxWeeklyDutyHours != 60 || cfg.Engine.MaxMonthlyDutyHours != 190 {
		t.Fatalf("unexpected duty ceilings: %+v", cfg.Engine)
	}
	if cfg.Engine.MinRestHours != 10 || cfg.Engine.CertWarningDays != 30 {
		t.Fatalf("unexpected rest/cert defaults: %+v", cfg.Engine)
	}
	if cfg.Engine.GenerationBudget != 30*time.Second || cfg.Engine.ConflictRetries != 3 {
		t.Fatalf("unexpected budget/retry defaults: %+v", cfg.Engine)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_WEEKLY_DUTY_HOURS", "55")
	t.Setenv("MIN_REST_HOURS", "12")
	t.Setenv("GENERATION_BUDGET_SECONDS", "5")
	t.Setenv("USE_SEED_DATA", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("PORT override ignored: %s", cfg.Port)
	}
	if cfg.Engine.MaxWeeklyDutyHours != 55 || cfg.Engine.MinRestHours != 12 {
		t.Fatalf("engine overrides ignored: %+v", cfg.Engine)
	}
	if cfg.Engine.GenerationBudget != 5*time.Second {
		t.Fatalf("budget override ignored: %v", cfg.Engine.GenerationBudget)
	}
	if !cfg.SeedData {
		t.Fatal("USE_SEED_DATA override ignored")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_WEEKLY_DUTY_HOURS", "not-a-number")
	t.Setenv("CONFLICT_RETRIES", "many")

	cfg := Load()

	if cfg.Engine.MaxWeeklyDutyHours != 60 || cfg.Engine.ConflictRetries != 3 {
		t.Fatalf("malformed values must fall back to defaults: %+v", cfg.Engine)
	}
}

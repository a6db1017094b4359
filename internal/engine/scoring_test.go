package engine

import (
	"math"
	"testing"

	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/models/entities"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfidencePenalties(t *testing.T) {
	cfg := config.DefaultEngineConfig()

	cases := []struct {
		name       string
		severities []entities.Severity
		want       float64
	}{
		{"no violations", nil, 1.0},
		{"single critical", []entities.Severity{entities.SeverityCritical}, 0.5},
		{"single high", []entities.Severity{entities.SeverityHigh}, 0.75},
		{"single medium", []entities.Severity{entities.SeverityMedium}, 0.9},
		{"single low", []entities.Severity{entities.SeverityLow}, 0.98},
		{"mixed", []entities.Severity{entities.SeverityCritical, entities.SeverityMedium}, 0.4},
		{"floors at zero", []entities.Severity{
			entities.SeverityCritical, entities.SeverityCritical, entities.SeverityCritical,
		}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var violations []entities.Violation
			for _, s := range tc.severities {
				violations = append(violations, entities.Violation{Severity: s})
			}
			got := Confidence(violations, cfg)
			if !almostEqual(got, tc.want) {
				t.Fatalf("want %f, got %f", tc.want, got)
			}
		})
	}
}

func TestBuildMetricsBlendsCoverageAndConfidence(t *testing.T) {
	assignments := []entities.RosterAssignment{
		{ID: "a-1", Confidence: 1.0},
		{ID: "a-2", Confidence: 0.5, Violations: []entities.Violation{{Severity: entities.SeverityCritical}}},
	}

	m := BuildMetrics(assignments, 4, []string{"flt-3"}, false, false)

	if m.TotalFlights != 4 || m.AssignedFlights != 3 || m.UnassignedFlights != 1 {
		t.Fatalf("coverage counts wrong: %+v", m)
	}
	if m.TotalViolations != 1 {
		t.Fatalf("want 1 violation, got %d", m.TotalViolations)
	}
	if !almostEqual(m.AverageConfidence, 0.75) {
		t.Fatalf("want avg confidence 0.75, got %f", m.AverageConfidence)
	}
	want := 0.6*0.75 + 0.4*0.75
	if !almostEqual(m.OptimizationScore, want) {
		t.Fatalf("want score %f, got %f", want, m.OptimizationScore)
	}
}

func TestBuildMetricsEmptyFlightSetCountsAsFullCoverage(t *testing.T) {
	m := BuildMetrics(nil, 0, nil, false, false)

	if m.AverageConfidence != 0 {
		t.Fatalf("no assignments means zero average, got %f", m.AverageConfidence)
	}
	if !almostEqual(m.OptimizationScore, 0.6) {
		t.Fatalf("empty set coverage counts as full, want 0.6, got %f", m.OptimizationScore)
	}
}

func TestBuildMetricsCarriesFlags(t *testing.T) {
	m := BuildMetrics(nil, 2, []string{"flt-1", "flt-2"}, true, true)
	if !m.Partial || !m.Degraded {
		t.Fatalf("partial/degraded flags must pass through: %+v", m)
	}
	if !almostEqual(m.OptimizationScore, 0) {
		t.Fatalf("zero coverage and zero confidence must score 0, got %f", m.OptimizationScore)
	}
}

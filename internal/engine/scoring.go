package engine

import (
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
)

// Confidence derives the [0,1] score for an assignment from its violations:
// 1.0 minus a configured penalty per severity, floored at zero. An empty
// violation list always yields exactly 1.0.
func Confidence(violations []entities.Violation, cfg config.EngineConfig) float64 {
	score := 1.0
	for _, v := range violations {
		switch v.Severity {
		case entities.SeverityCritical:
			score -= cfg.PenaltyCritical
		case entities.SeverityHigh:
			score -= cfg.PenaltyHigh
		case entities.SeverityMedium:
			score -= cfg.PenaltyMedium
		case entities.SeverityLow:
			score -= cfg.PenaltyLow
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// BuildMetrics aggregates per-assignment data into roster-level metrics.
// The optimization score is a weighted blend of coverage and average
// confidence; coverage of an empty flight set counts as full.
func BuildMetrics(assignments []entities.RosterAssignment, totalFlights int, unassigned []string, partial, degraded bool) dtos.RosterMetrics {
	m := dtos.RosterMetrics{
		TotalFlights:        totalFlights,
		UnassignedFlights:   len(unassigned),
		UnassignedFlightIDs: unassigned,
		AssignedFlights:     totalFlights - len(unassigned),
		Partial:             partial,
		Degraded:            degraded,
	}

	var confidenceSum float64
	for _, a := range assignments {
		m.TotalViolations += len(a.Violations)
		confidenceSum += a.Confidence
	}
	if len(assignments) > 0 {
		m.AverageConfidence = confidenceSum / float64(len(assignments))
	}

	coverage := 1.0
	if totalFlights > 0 {
		coverage = float64(m.AssignedFlights) / float64(totalFlights)
	}
	m.OptimizationScore = 0.6*coverage + 0.4*m.AverageConfidence
	return m
}

package dtos

import (
	"aero-rhythm/crewops/internal/models/entities"
)

// RosterMetrics aggregates per-assignment confidence into roster-level
// quality numbers.
type RosterMetrics struct {
	TotalFlights        int      `json:"total_flights"`
	AssignedFlights     int      `json:"assigned_flights"`
	UnassignedFlights   int      `json:"unassigned_flights"`
	UnassignedFlightIDs []string `json:"unassigned_flight_ids,omitempty"`
	TotalViolations     int      `json:"total_violations"`
	AverageConfidence   float64  `json:"average_confidence"`
	OptimizationScore   float64  `json:"optimization_score"`

	// Partial is set when the time budget expired and the result covers
	// only the flights processed so far.
	Partial bool `json:"partial"`
	// Degraded is set when a collaborator failed and cached or placeholder
	// data was substituted.
	Degraded bool `json:"degraded"`
}

// RosterGenerationResult is the full outcome of one generation run.
type RosterGenerationResult struct {
	RosterID    string                      `json:"roster_id"`
	Window      entities.TimeWindow         `json:"window"`
	Assignments []entities.RosterAssignment `json:"assignments"`
	Metrics     RosterMetrics               `json:"metrics"`
}

// Recommendation action vocabulary.
const (
	ActionReassignCrew   = "reassign_crew"
	ActionDelayDeparture = "delay_departure"
	ActionCancelFlight   = "cancel_flight"
)

// Recommendation is a ranked, not-yet-applied proposal. Lower priority
// numbers rank higher.
type Recommendation struct {
	ID              string               `json:"id"`
	Action          string               `json:"action"`
	Priority        int                  `json:"priority"`
	Description     string               `json:"description"`
	EstimatedImpact string               `json:"estimated_impact,omitempty"`
	AssignmentID    string               `json:"assignment_id"`
	FlightID        string               `json:"flight_id,omitempty"`
	CrewID          string               `json:"crew_id,omitempty"`
	Confidence      float64              `json:"confidence"`
	Violations      []entities.Violation `json:"violations,omitempty"`
	NewStart        *string              `json:"new_start,omitempty"`
	NewEnd          *string              `json:"new_end,omitempty"`
}

// AffectedAssignment pairs an assignment touched by a disruption with the
// violations the disruption introduced and the status the resolver proposes.
type AffectedAssignment struct {
	Assignment     entities.RosterAssignment `json:"assignment"`
	NewViolations  []entities.Violation      `json:"new_violations,omitempty"`
	ProposedStatus entities.AssignmentStatus `json:"proposed_status"`
}

// DisruptionResponse is the resolution preview for one disruption event.
type DisruptionResponse struct {
	EventID             string               `json:"event_id"`
	AffectedAssignments []AffectedAssignment `json:"affected_assignments"`
	Recommendations     []Recommendation     `json:"recommendations"`
	// NoEligibleCrew is the explicit exhausted-pool state: replacements
	// were searched for and none exist.
	NoEligibleCrew bool `json:"no_eligible_crew"`
}

// ExplanationResponse is what the UI layer receives for one assignment.
type ExplanationResponse struct {
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// AssignmentListResponse wraps a windowed roster read.
type AssignmentListResponse struct {
	Assignments []entities.RosterAssignment `json:"assignments"`
	Total       int                         `json:"total"`
}

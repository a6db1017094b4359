package dtos

import "time"

// RejectedAlternative records a candidate that was considered for a slot and
// why the generator passed over them.
type RejectedAlternative struct {
	CrewID string `json:"crew_id"`
	Reason string `json:"reason"`
}

// ExplanationRecord is the structured explanation handed to the external
// text-generation collaborator. The engine never produces prose itself.
type ExplanationRecord struct {
	ID             string                `json:"id"`
	AssignmentID   string                `json:"assignment_id"`
	Inputs         []string              `json:"inputs"`
	RulesTriggered []string              `json:"rules_triggered"`
	Alternatives   []RejectedAlternative `json:"alternatives"`
	Confidence     float64               `json:"confidence"`
	CreatedAt      time.Time             `json:"created_at"`
}

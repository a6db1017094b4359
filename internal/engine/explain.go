package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
	"aero-rhythm/crewops/internal/rules"
)

// explanationNamespace keys deterministic explanation ids; the same inputs
// always yield the same record id.
var explanationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("crewops/explanations"))

// NewExplanationID derives a stable id for the explanation attached to an
// assignment.
func NewExplanationID(assignmentID string) string {
	return uuid.NewSHA1(explanationNamespace, []byte(assignmentID)).String()
}

// BuildExplanation assembles the structured explanation record for one
// assignment: the inputs considered, the rules that triggered, and the
// alternatives rejected along the way. Prose rendering happens elsewhere;
// this record is the complete machine-readable story.
func BuildExplanation(
	assignmentID string,
	cand rules.Candidate,
	violations []entities.Violation,
	rejected []dtos.RejectedAlternative,
	confidence float64,
	at time.Time,
) dtos.ExplanationRecord {
	inputs := []string{
		fmt.Sprintf("crew=%s (%s, base %s)", cand.Crew.ID, cand.Crew.Position, cand.Crew.BaseAirport),
		fmt.Sprintf("duty=%s position=%s window=%s/%s",
			cand.DutyType, cand.Position,
			cand.Start.UTC().Format(time.RFC3339), cand.End.UTC().Format(time.RFC3339)),
		fmt.Sprintf("weekly_duty_hours=%.1f", cand.Crew.WeeklyDutyHours),
	}
	if cand.Flight != nil {
		inputs = append(inputs, fmt.Sprintf("flight=%s aircraft=%s route=%s-%s",
			cand.Flight.ID, cand.Flight.AircraftType, cand.Flight.Origin, cand.Flight.Destination))
	}

	triggered := make([]string, 0, len(violations))
	for _, v := range violations {
		triggered = append(triggered, fmt.Sprintf("%s/%s: %s", v.Type, v.Severity, v.Description))
	}

	return dtos.ExplanationRecord{
		ID:             NewExplanationID(assignmentID),
		AssignmentID:   assignmentID,
		Inputs:         inputs,
		RulesTriggered: triggered,
		Alternatives:   rejected,
		Confidence:     confidence,
		CreatedAt:      at,
	}
}

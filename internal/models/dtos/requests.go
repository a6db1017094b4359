package dtos

import (
	"time"

	"aero-rhythm/crewops/internal/models/entities"
)

// GenerateRosterRequest asks for a roster over [Start, End).
type GenerateRosterRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r *GenerateRosterRequest) Window() entities.TimeWindow {
	return entities.TimeWindow{Start: r.Start, End: r.End}
}

// DisruptionRequest reports a new disruption event. The engine answers with
// a resolution preview; nothing is mutated until a recommendation is applied.
type DisruptionRequest struct {
	Type            entities.DisruptionType `json:"type"`
	Severity        entities.Severity       `json:"severity"`
	AffectedFlights []string                `json:"affected_flights"`
	AffectedCrew    []string                `json:"affected_crew"`
	Attributes      map[string]any          `json:"attributes,omitempty"`
}

// ApplyRecommendationRequest commits one previously previewed recommendation.
type ApplyRecommendationRequest struct {
	RecommendationID string `json:"recommendation_id"`
}

// CrewStatusRequest is the explicit availability change that restores (or
// removes) a crew member from eligibility.
type CrewStatusRequest struct {
	Status entities.CrewStatus `json:"status"`
}

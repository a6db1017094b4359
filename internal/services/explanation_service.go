package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/engine"
	"aero-rhythm/crewops/internal/models/dtos"
	gormModels "aero-rhythm/crewops/internal/models/gorm"
)

// ExplanationService serves assignment explanations. The prose is rendered
// asynchronously by the narrative collaborator; until it lands (or if the
// render failed) the structured record is summarized into a placeholder so
// the endpoint never blocks on the external service.
type ExplanationService struct {
	expls *repositories.ExplanationRepository
}

func NewExplanationService(expls *repositories.ExplanationRepository) *ExplanationService {
	return &ExplanationService{expls: expls}
}

func (s *ExplanationService) GetExplanation(ctx context.Context, id string) (*dtos.ExplanationResponse, error) {
	row, err := s.expls.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if row.RenderState == gormModels.RenderRendered && row.Prose != nil {
		return &dtos.ExplanationResponse{
			Explanation: *row.Prose,
			Confidence:  row.Confidence,
		}, nil
	}

	record, err := s.expls.Record(row)
	if err != nil {
		return nil, err
	}
	return &dtos.ExplanationResponse{
		Explanation: summarize(record),
		Confidence:  row.Confidence,
	}, nil
}

// summarize turns the structured record into readable fallback text.
func summarize(record *dtos.ExplanationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assignment %s selected with confidence %.2f.", record.AssignmentID, record.Confidence)

	if len(record.RulesTriggered) > 0 {
		b.WriteString(" Rules triggered: ")
		b.WriteString(strings.Join(record.RulesTriggered, "; "))
		b.WriteString(".")
	} else {
		b.WriteString(" No scheduling rules were violated.")
	}

	if len(record.Alternatives) > 0 {
		fmt.Fprintf(&b, " %d alternative candidate(s) were rejected.", len(record.Alternatives))
	}
	return b.String()
}

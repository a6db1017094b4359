package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aero-rhythm/crewops/internal/models/dtos"
)

// ProviderError carries a classified failure from an external collaborator.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeInvalidResponse     = "INVALID_RESPONSE"
	ErrCodeMissingAPIKey       = "MISSING_API_KEY"
)

// NarrativeProvider renders a structured explanation record into prose. The
// engine itself never produces text; rendering always goes through here.
type NarrativeProvider interface {
	GetProviderType() string
	Render(ctx context.Context, record dtos.ExplanationRecord) (string, error)
}

// HTTPNarrativeProvider calls the external text-generation service.
type HTTPNarrativeProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewNarrativeProvider returns the HTTP provider when a base URL is
// configured, otherwise the local template renderer so explanations always
// get prose.
func NewNarrativeProvider(baseURL, apiKey string) NarrativeProvider {
	if baseURL == "" {
		return &TemplateNarrativeProvider{}
	}
	return &HTTPNarrativeProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *HTTPNarrativeProvider) GetProviderType() string {
	return "narrative_http"
}

type narrativeRenderRequest struct {
	AssignmentID   string                     `json:"assignment_id"`
	Inputs         []string                   `json:"inputs"`
	RulesTriggered []string                   `json:"rules_triggered"`
	Alternatives   []dtos.RejectedAlternative `json:"alternatives"`
	Confidence     float64                    `json:"confidence"`
}

type narrativeRenderResponse struct {
	Text string `json:"text"`
}

// Render posts the structured record and returns the rendered text.
func (p *HTTPNarrativeProvider) Render(ctx context.Context, record dtos.ExplanationRecord) (string, error) {
	if p.APIKey == "" {
		return "", &ProviderError{
			Code:    ErrCodeMissingAPIKey,
			Message: "narrative API key is not configured",
		}
	}

	reqBody := narrativeRenderRequest{
		AssignmentID:   record.AssignmentID,
		Inputs:         record.Inputs,
		RulesTriggered: record.RulesTriggered,
		Alternatives:   record.Alternatives,
		Confidence:     record.Confidence,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := p.BaseURL + "/v1/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &ProviderError{
			Code:    ErrCodeProviderUnavailable,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Code:    ErrCodeProviderUnavailable,
			Message: fmt.Sprintf("narrative service returned %d", resp.StatusCode),
		}
	}

	var rendered narrativeRenderResponse
	if err := json.Unmarshal(body, &rendered); err != nil {
		return "", &ProviderError{
			Code:    ErrCodeInvalidResponse,
			Message: err.Error(),
		}
	}
	if rendered.Text == "" {
		return "", &ProviderError{
			Code:    ErrCodeInvalidResponse,
			Message: "narrative service returned empty text",
		}
	}
	return rendered.Text, nil
}

// TemplateNarrativeProvider renders prose locally from the structured record.
// Used when no external narrative service is configured.
type TemplateNarrativeProvider struct{}

func (p *TemplateNarrativeProvider) GetProviderType() string {
	return "narrative_template"
}

func (p *TemplateNarrativeProvider) Render(_ context.Context, record dtos.ExplanationRecord) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Assignment %s was selected with a confidence score of %.2f. ",
		record.AssignmentID, record.Confidence)

	if len(record.RulesTriggered) == 0 {
		b.WriteString("All scheduling rules passed without violations.")
	} else {
		fmt.Fprintf(&b, "%d scheduling rule(s) flagged this assignment: %s.",
			len(record.RulesTriggered), strings.Join(record.RulesTriggered, "; "))
	}

	if len(record.Alternatives) > 0 {
		b.WriteString(" Rejected alternatives: ")
		parts := make([]string, 0, len(record.Alternatives))
		for _, alt := range record.Alternatives {
			parts = append(parts, fmt.Sprintf("%s (%s)", alt.CrewID, alt.Reason))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return b.String(), nil
}

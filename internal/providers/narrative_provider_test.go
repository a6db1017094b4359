package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aero-rhythm/crewops/internal/models/dtos"
)

func sampleRecord() dtos.ExplanationRecord {
	return dtos.ExplanationRecord{
		AssignmentID:   "a-1",
		Inputs:         []string{"crew cpt-1", "flight flt-1"},
		RulesTriggered: []string{"REST_PERIOD: rest shortfall of 2h"},
		Alternatives: []dtos.RejectedAlternative{
			{CrewID: "cpt-2", Reason: "duty-hour ceiling exceeded"},
		},
		Confidence: 0.75,
	}
}

func TestNewNarrativeProviderSelectsByConfig(t *testing.T) {
	if got := NewNarrativeProvider("", "").GetProviderType(); got != "narrative_template" {
		t.Fatalf("empty base URL must select the template provider, got %s", got)
	}
	if got := NewNarrativeProvider("http://narrative.local", "key").GetProviderType(); got != "narrative_http" {
		t.Fatalf("configured base URL must select the HTTP provider, got %s", got)
	}
}

func TestHTTPRenderSuccess(t *testing.T) {
	var gotAuth string
	var gotReq narrativeRenderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/render" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(narrativeRenderResponse{Text: "Captain cpt-1 flies flt-1."})
	}))
	defer srv.Close()

	p := NewNarrativeProvider(srv.URL, "secret")
	text, err := p.Render(context.Background(), sampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	if text != "Captain cpt-1 flies flt-1." {
		t.Fatalf("unexpected text %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotReq.AssignmentID != "a-1" || gotReq.Confidence != 0.75 {
		t.Fatalf("request did not carry the record: %+v", gotReq)
	}
}

func TestHTTPRenderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewNarrativeProvider(srv.URL, "secret")
	_, err := p.Render(context.Background(), sampleRecord())

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != ErrCodeProviderUnavailable {
		t.Fatalf("expected %s, got %v", ErrCodeProviderUnavailable, err)
	}
}

func TestHTTPRenderEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(narrativeRenderResponse{Text: ""})
	}))
	defer srv.Close()

	p := NewNarrativeProvider(srv.URL, "secret")
	_, err := p.Render(context.Background(), sampleRecord())

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != ErrCodeInvalidResponse {
		t.Fatalf("expected %s, got %v", ErrCodeInvalidResponse, err)
	}
}

func TestHTTPRenderMissingAPIKey(t *testing.T) {
	p := &HTTPNarrativeProvider{BaseURL: "http://narrative.local", Client: http.DefaultClient}
	_, err := p.Render(context.Background(), sampleRecord())

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != ErrCodeMissingAPIKey {
		t.Fatalf("expected %s, got %v", ErrCodeMissingAPIKey, err)
	}
}

func TestTemplateRenderIncludesRulesAndAlternatives(t *testing.T) {
	p := &TemplateNarrativeProvider{}
	text, err := p.Render(context.Background(), sampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a-1", "0.75", "REST_PERIOD", "cpt-2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered text missing %q: %s", want, text)
		}
	}
}

func TestTemplateRenderCleanRecord(t *testing.T) {
	record := sampleRecord()
	record.RulesTriggered = nil
	record.Alternatives = nil

	p := &TemplateNarrativeProvider{}
	text, err := p.Render(context.Background(), record)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "without violations") {
		t.Fatalf("clean record must say so: %s", text)
	}
}

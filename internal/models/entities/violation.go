package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type (
	Severity      string
	ViolationType string
)

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Violation type vocabulary mirrors the compliance rule types used across the
// rostering domain (DUTY_TIME, REST_TIME, etc.)
const (
	ViolationDutyTime      ViolationType = "DUTY_TIME"
	ViolationRestTime      ViolationType = "REST_TIME"
	ViolationQualification ViolationType = "QUALIFICATION"
	ViolationAvailability  ViolationType = "AVAILABILITY"
	ViolationOverlap       ViolationType = "OVERLAP"
)

// Rank maps a severity to a comparable weight, highest first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Violation is a detected breach (or near-breach) of a scheduling rule.
// Violations are recomputed in full on every re-evaluation of an assignment,
// never patched incrementally.
type Violation struct {
	Type           ViolationType `json:"type"`
	Severity       Severity      `json:"severity"`
	Description    string        `json:"description"`
	Recommendation string        `json:"recommendation"`
}

// ViolationList is the violations column on the assignment row, stored as
// serialized JSON so the evaluated state survives the read path intact.
type ViolationList []Violation

func (v ViolationList) Value() (driver.Value, error) {
	if len(v) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func (v *ViolationList) Scan(src any) error {
	switch data := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		if len(data) == 0 {
			*v = nil
			return nil
		}
		return json.Unmarshal(data, v)
	case string:
		if data == "" {
			*v = nil
			return nil
		}
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("violations: unsupported scan type %T", src)
	}
}

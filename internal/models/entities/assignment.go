package entities

import "time"

type (
	DutyType         string
	AssignmentStatus string
)

const (
	DutyFlight   DutyType = "flight"
	DutyStandby  DutyType = "standby"
	DutyTraining DutyType = "training"
	DutyRest     DutyType = "rest"
)

const (
	AssignmentConfirmed   AssignmentStatus = "confirmed"
	AssignmentTentative   AssignmentStatus = "tentative"
	AssignmentCancelled   AssignmentStatus = "cancelled"
	AssignmentOnSickLeave AssignmentStatus = "on_sick_leave"
)

func (d DutyType) IsValid() bool {
	switch d {
	case DutyFlight, DutyStandby, DutyTraining, DutyRest:
		return true
	default:
		return false
	}
}

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentConfirmed, AssignmentTentative, AssignmentCancelled, AssignmentOnSickLeave:
		return true
	default:
		return false
	}
}

// Active reports whether the assignment still occupies the crew member's
// time. Cancelled assignments are kept for history but no longer block
// overlapping duties.
func (s AssignmentStatus) Active() bool {
	switch s {
	case AssignmentConfirmed, AssignmentTentative, AssignmentOnSickLeave:
		return true
	case AssignmentCancelled:
		return false
	default:
		return false
	}
}

// RosterAssignment links one crew member to one flight slot or non-flight
// duty. Assignments are never physically deleted; cancellation is a status
// transition so the history stays intact.
type RosterAssignment struct {
	ID            string           `db:"id" json:"id"`
	CrewID        string           `db:"crew_id" json:"crew_id"`
	FlightID      *string          `db:"flight_id" json:"flight_id,omitempty"`
	DutyType      DutyType         `db:"duty_type" json:"duty_type"`
	Position      CrewPosition     `db:"position" json:"position"`
	Start         time.Time        `db:"start" json:"start"`
	End           time.Time        `db:"end" json:"end"`
	Status        AssignmentStatus `db:"status" json:"status"`
	Confidence    float64          `db:"confidence" json:"confidence"`
	Violations    ViolationList    `db:"violations" json:"violations"`
	ExplanationID *string          `db:"explanation_id" json:"explanation_id,omitempty"`
	Version       int              `db:"version" json:"version"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

func (a *RosterAssignment) Window() TimeWindow {
	return TimeWindow{Start: a.Start, End: a.End}
}

// DutyHours is the length of the duty period in hours.
func (a *RosterAssignment) DutyHours() float64 {
	return a.End.Sub(a.Start).Hours()
}

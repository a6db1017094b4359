package entities

import "time"

type (
	CrewPosition string
	CrewStatus   string
)

const (
	PositionCaptain         CrewPosition = "captain"
	PositionFirstOfficer    CrewPosition = "first_officer"
	PositionFlightAttendant CrewPosition = "flight_attendant"
)

const (
	CrewAvailable CrewStatus = "available"
	CrewOnLeave   CrewStatus = "on_leave"
	CrewSickLeave CrewStatus = "sick_leave"
	CrewTraining  CrewStatus = "training"
	CrewStandby   CrewStatus = "standby"
)

func (p CrewPosition) IsValid() bool {
	switch p {
	case PositionCaptain, PositionFirstOfficer, PositionFlightAttendant:
		return true
	default:
		return false
	}
}

func (s CrewStatus) IsValid() bool {
	switch s {
	case CrewAvailable, CrewOnLeave, CrewSickLeave, CrewTraining, CrewStandby:
		return true
	default:
		return false
	}
}

// Assignable reports whether a crew member in this status may receive new
// duties. Only available and standby crew are schedulable; every other status
// is an externally driven hold.
func (s CrewStatus) Assignable() bool {
	switch s {
	case CrewAvailable, CrewStandby:
		return true
	case CrewOnLeave, CrewSickLeave, CrewTraining:
		return false
	default:
		return false
	}
}

type CrewMember struct {
	ID               string       `db:"id" json:"id"`
	EmployeeID       string       `db:"employee_id" json:"employee_id"`
	FirstName        string       `db:"first_name" json:"first_name"`
	LastName         string       `db:"last_name" json:"last_name"`
	Position         CrewPosition `db:"position" json:"position"`
	BaseAirport      string       `db:"base_airport" json:"base_airport"`
	SeniorityNumber  int          `db:"seniority_number" json:"seniority_number"`
	LicenseExpiry    time.Time    `db:"license_expiry" json:"license_expiry"`
	MedicalExpiry    time.Time    `db:"medical_expiry" json:"medical_expiry"`
	WeeklyDutyHours  float64      `db:"weekly_duty_hours" json:"weekly_duty_hours"`
	MonthlyDutyHours float64      `db:"monthly_duty_hours" json:"monthly_duty_hours"`
	LastRestEnd      time.Time    `db:"last_rest_end" json:"last_rest_end"`
	Status           CrewStatus   `db:"status" json:"status"`
	Version          int          `db:"version" json:"version"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

func (c *CrewMember) FullName() string {
	return c.FirstName + " " + c.LastName
}

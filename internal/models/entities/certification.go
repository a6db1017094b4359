package entities

import "time"

// Certification is a training or licensing record belonging to exactly one
// crew member. AircraftType is nil for certifications that are not tied to a
// specific type (e.g. recurrent safety training).
type Certification struct {
	ID           string    `db:"id" json:"id"`
	CrewID       string    `db:"crew_id" json:"crew_id"`
	Type         string    `db:"type" json:"type"`
	AircraftType *string   `db:"aircraft_type" json:"aircraft_type,omitempty"`
	IssuedAt     time.Time `db:"issued_at" json:"issued_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether this record qualifies the holder for the given
// aircraft type at the given instant. A certification expiring exactly at the
// departure time does not cover the duty.
func (c *Certification) Covers(aircraftType string, at time.Time) bool {
	if c.AircraftType == nil || *c.AircraftType != aircraftType {
		return false
	}
	return c.ExpiresAt.After(at) && !c.IssuedAt.After(at)
}

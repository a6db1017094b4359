package entities

import "time"

type (
	DisruptionType   string
	DisruptionStatus string
)

const (
	DisruptionWeather         DisruptionType = "weather"
	DisruptionTechnical       DisruptionType = "technical"
	DisruptionCrewUnavailable DisruptionType = "crew_unavailable"
	DisruptionSecurity        DisruptionType = "security"
	DisruptionOperational     DisruptionType = "operational"
)

const (
	DisruptionActive   DisruptionStatus = "active"
	DisruptionResolved DisruptionStatus = "resolved"
)

func (t DisruptionType) IsValid() bool {
	switch t {
	case DisruptionWeather, DisruptionTechnical, DisruptionCrewUnavailable,
		DisruptionSecurity, DisruptionOperational:
		return true
	default:
		return false
	}
}

// ReplacesCrew reports whether the disruption implies crew unavailability,
// meaning affected assignments need a substitute rather than a schedule
// re-check.
func (t DisruptionType) ReplacesCrew() bool {
	switch t {
	case DisruptionCrewUnavailable:
		return true
	case DisruptionWeather, DisruptionTechnical, DisruptionSecurity, DisruptionOperational:
		return false
	default:
		return false
	}
}

// DisruptionEvent stays active until explicitly resolved. Resolution marks
// the event closed; it never retroactively rewrites historical assignments.
type DisruptionEvent struct {
	ID              string           `json:"id"`
	Type            DisruptionType   `json:"type"`
	Severity        Severity         `json:"severity"`
	AffectedFlights []string         `json:"affected_flights"`
	AffectedCrew    []string         `json:"affected_crew"`
	DetectedAt      time.Time        `json:"detected_at"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	Status          DisruptionStatus `json:"status"`
	Attributes      map[string]any   `json:"attributes,omitempty"`
}

// DelayMinutes reads the schedule-shift carried on the event, when present.
func (d *DisruptionEvent) DelayMinutes() int {
	return d.intAttr("delay_minutes")
}

// PassengersAffected reads the passenger impact carried on the event.
func (d *DisruptionEvent) PassengersAffected() int {
	return d.intAttr("passengers_affected")
}

func (d *DisruptionEvent) intAttr(key string) int {
	v, ok := d.Attributes[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

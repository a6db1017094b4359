package entities

import "time"

// FlightLeg is a single sector within a pairing. A flight with a single leg
// is an ordinary point-to-point duty.
type FlightLeg struct {
	ID        string    `db:"id" json:"id"`
	FlightID  string    `db:"flight_id" json:"flight_id"`
	Sequence  int       `db:"sequence" json:"sequence"`
	Origin    string    `db:"origin" json:"origin"`
	Dest      string    `db:"destination" json:"destination"`
	Departure time.Time `db:"departure" json:"departure"`
	Arrival   time.Time `db:"arrival" json:"arrival"`
}

// Flight is a flight or multi-leg pairing. The ID is the flight code
// (e.g. "AR205") and doubles as the primary key.
type Flight struct {
	ID            string    `db:"id" json:"id"`
	FlightNumber  string    `db:"flight_number" json:"flight_number"`
	Origin        string    `db:"origin" json:"origin"`
	Destination   string    `db:"destination" json:"destination"`
	AircraftType  string    `db:"aircraft_type" json:"aircraft_type"`
	Departure     time.Time `db:"departure" json:"departure"`
	Arrival       time.Time `db:"arrival" json:"arrival"`
	ReqCaptains   int       `db:"required_captains" json:"required_captains"`
	ReqFirstOffs  int       `db:"required_first_officers" json:"required_first_officers"`
	ReqAttendants int       `db:"required_attendants" json:"required_attendants"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// Legs is populated by the repository for pairings; empty for plain
	// single-sector flights.
	Legs []FlightLeg `db:"-" json:"legs,omitempty"`
}

// RequiredFor returns how many crew of the given position the flight needs.
func (f *Flight) RequiredFor(pos CrewPosition) int {
	switch pos {
	case PositionCaptain:
		return f.ReqCaptains
	case PositionFirstOfficer:
		return f.ReqFirstOffs
	case PositionFlightAttendant:
		return f.ReqAttendants
	default:
		return 0
	}
}

func (f *Flight) TotalRequired() int {
	return f.ReqCaptains + f.ReqFirstOffs + f.ReqAttendants
}

// DutyWindow spans the whole duty period: first departure to last arrival
// when the flight bundles multiple legs.
func (f *Flight) DutyWindow() TimeWindow {
	w := TimeWindow{Start: f.Departure, End: f.Arrival}
	for _, leg := range f.Legs {
		if leg.Departure.Before(w.Start) {
			w.Start = leg.Departure
		}
		if leg.Arrival.After(w.End) {
			w.End = leg.Arrival
		}
	}
	return w
}

package rules

import (
	"fmt"
	"sort"
	"time"

	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/models/entities"
)

// Candidate is a tentative assignment under evaluation. AssignmentID is set
// when re-evaluating an existing assignment so the overlap rule does not
// report the assignment against itself.
type Candidate struct {
	AssignmentID string
	Crew         entities.CrewMember
	Flight       *entities.Flight
	DutyType     entities.DutyType
	Position     entities.CrewPosition
	Start        time.Time
	End          time.Time
}

func (c Candidate) Window() entities.TimeWindow {
	return entities.TimeWindow{Start: c.Start, End: c.End}
}

// CrewState is the caller-sourced snapshot the evaluator runs against:
// certification records, leave requests, and the assignment history relevant
// to the candidate's window (trailing 28 days at minimum).
type CrewState struct {
	Certifications []entities.Certification
	Leaves         []entities.LeaveRequest
	History        []entities.RosterAssignment
}

// Evaluator applies every scheduling rule to a candidate assignment. It is a
// pure function over the provided state: no lookups, no caching, no side
// effects. All rules run; violations are never short-circuited so the caller
// can rank and aggregate the full picture.
type Evaluator struct {
	cfg config.EngineConfig
}

func NewEvaluator(cfg config.EngineConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate returns all violations for the candidate, sorted by severity
// descending and, within equal severity, by rule evaluation order
// (duty-hour, rest, qualification, availability, overlap). The ordering is
// deterministic for identical inputs.
func (e *Evaluator) Evaluate(cand Candidate, state CrewState) []entities.Violation {
	var out []entities.Violation
	out = append(out, e.dutyHourViolations(cand, state)...)
	out = append(out, e.restViolations(cand, state)...)
	out = append(out, e.qualificationViolations(cand, state)...)
	out = append(out, e.availabilityViolations(cand, state)...)
	out = append(out, e.overlapViolations(cand, state)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}

// dutyHourViolations checks the trailing 7-day and 28-day duty-hour ceilings.
// A window already over its ceiling before the candidate is critical; a
// window pushed over the ceiling by the candidate itself is high.
func (e *Evaluator) dutyHourViolations(cand Candidate, state CrewState) []entities.Violation {
	candHours := cand.End.Sub(cand.Start).Hours()

	checks := []struct {
		days  int
		limit float64
		label string
	}{
		{7, e.cfg.MaxWeeklyDutyHours, "7-day"},
		{28, e.cfg.MaxMonthlyDutyHours, "28-day"},
	}

	var out []entities.Violation
	for _, chk := range checks {
		windowStart := cand.End.Add(-time.Duration(chk.days) * 24 * time.Hour)
		var hist float64
		for _, a := range state.History {
			if a.ID == cand.AssignmentID {
				continue
			}
			if a.Status.Active() && a.End.After(windowStart) {
				hist += a.DutyHours()
			}
		}

		total := hist + candHours
		switch {
		case hist > chk.limit:
			out = append(out, entities.Violation{
				Type:     entities.ViolationDutyTime,
				Severity: entities.SeverityCritical,
				Description: fmt.Sprintf("%s duty time %.1fh already exceeds ceiling of %.1fh before this duty",
					chk.label, hist, chk.limit),
				Recommendation: "Remove an existing duty from the window or pick rested crew",
			})
		case total > chk.limit:
			out = append(out, entities.Violation{
				Type:     entities.ViolationDutyTime,
				Severity: entities.SeverityHigh,
				Description: fmt.Sprintf("%s duty time would reach %.1fh during this duty, over the ceiling of %.1fh",
					chk.label, total, chk.limit),
				Recommendation: "Assign a crew member with more remaining duty-hour headroom",
			})
		}
	}
	return out
}

// restViolations checks the minimum rest between the end of the immediately
// preceding duty and the candidate's start. A shortfall below half the
// required rest is critical, any other shortfall is high.
func (e *Evaluator) restViolations(cand Candidate, state CrewState) []entities.Violation {
	prevEnd := cand.Crew.LastRestEnd
	for _, a := range state.History {
		if a.ID == cand.AssignmentID || !a.Status.Active() {
			continue
		}
		if !a.End.After(cand.Start) && a.End.After(prevEnd) {
			prevEnd = a.End
		}
	}
	if prevEnd.IsZero() {
		return nil
	}

	required := time.Duration(e.cfg.MinRestHours * float64(time.Hour))
	rest := cand.Start.Sub(prevEnd)
	if rest >= required {
		return nil
	}

	severity := entities.SeverityHigh
	if rest < required/2 {
		severity = entities.SeverityCritical
	}
	return []entities.Violation{{
		Type:     entities.ViolationRestTime,
		Severity: severity,
		Description: fmt.Sprintf("only %.1fh of rest before duty start, %.1fh required",
			rest.Hours(), required.Hours()),
		Recommendation: "Delay the duty or assign crew with a completed rest period",
	}}
}

// qualificationViolations checks aircraft-type certification coverage at the
// duty's departure time, plus license and medical validity. A covering
// certification that expires within the warning window of the duty raises a
// medium, non-blocking violation.
func (e *Evaluator) qualificationViolations(cand Candidate, state CrewState) []entities.Violation {
	if cand.DutyType != entities.DutyFlight || cand.Flight == nil {
		return nil
	}

	var out []entities.Violation
	aircraft := cand.Flight.AircraftType

	var bestExpiry time.Time
	for _, cert := range state.Certifications {
		if cert.Covers(aircraft, cand.Start) && cert.ExpiresAt.After(bestExpiry) {
			bestExpiry = cert.ExpiresAt
		}
	}

	if bestExpiry.IsZero() {
		out = append(out, entities.Violation{
			Type:     entities.ViolationQualification,
			Severity: entities.SeverityCritical,
			Description: fmt.Sprintf("no valid %s certification at departure time",
				aircraft),
			Recommendation: "Assign type-rated crew or schedule recurrent training",
		})
	} else {
		warning := time.Duration(e.cfg.CertWarningDays) * 24 * time.Hour
		if bestExpiry.Before(cand.End.Add(warning)) {
			out = append(out, entities.Violation{
				Type:     entities.ViolationQualification,
				Severity: entities.SeverityMedium,
				Description: fmt.Sprintf("%s certification expires %s, within the %d-day warning window",
					aircraft, bestExpiry.Format("2006-01-02"), e.cfg.CertWarningDays),
				Recommendation: "Schedule recertification before expiry",
			})
		}
	}

	if !cand.Crew.LicenseExpiry.IsZero() && !cand.Crew.LicenseExpiry.After(cand.Start) {
		out = append(out, entities.Violation{
			Type:           entities.ViolationQualification,
			Severity:       entities.SeverityCritical,
			Description:    "license expired before duty start",
			Recommendation: "Renew license before assigning flight duty",
		})
	}
	if !cand.Crew.MedicalExpiry.IsZero() && !cand.Crew.MedicalExpiry.After(cand.Start) {
		out = append(out, entities.Violation{
			Type:           entities.ViolationQualification,
			Severity:       entities.SeverityCritical,
			Description:    "medical certificate expired before duty start",
			Recommendation: "Renew medical certificate before assigning flight duty",
		})
	}
	return out
}

// availabilityViolations checks the crew member's status and approved leave.
// Both are hard constraints.
func (e *Evaluator) availabilityViolations(cand Candidate, state CrewState) []entities.Violation {
	var out []entities.Violation

	if !cand.Crew.Status.Assignable() {
		out = append(out, entities.Violation{
			Type:     entities.ViolationAvailability,
			Severity: entities.SeverityCritical,
			Description: fmt.Sprintf("crew status is %s, not assignable",
				cand.Crew.Status),
			Recommendation: "Wait for an explicit availability restoration",
		})
	}

	window := cand.Window()
	for _, l := range state.Leaves {
		if l.Blocks(window) {
			out = append(out, entities.Violation{
				Type:           entities.ViolationAvailability,
				Severity:       entities.SeverityCritical,
				Description:    fmt.Sprintf("approved %s leave overlaps the duty window", l.Type),
				Recommendation: "Assign crew without approved leave in the window",
			})
		}
	}
	return out
}

// overlapViolations reports double-booking against every active assignment
// whose window intersects the candidate's.
func (e *Evaluator) overlapViolations(cand Candidate, state CrewState) []entities.Violation {
	var out []entities.Violation
	window := cand.Window()
	for _, a := range state.History {
		if a.ID == cand.AssignmentID || !a.Status.Active() {
			continue
		}
		if a.Window().Overlaps(window) {
			out = append(out, entities.Violation{
				Type:     entities.ViolationOverlap,
				Severity: entities.SeverityCritical,
				Description: fmt.Sprintf("overlaps active assignment %s (%s duty)",
					a.ID, a.DutyType),
				Recommendation: "Cancel or move one of the conflicting duties",
			})
		}
	}
	return out
}

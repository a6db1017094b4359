package entities

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	default:
		return false
	}
}

// LeaveRequest blocks a crew member from eligibility for its window once
// approved. Approved leave is a hard constraint, not advisory.
type LeaveRequest struct {
	ID        string      `db:"id" json:"id"`
	CrewID    string      `db:"crew_id" json:"crew_id"`
	Start     time.Time   `db:"start" json:"start"`
	End       time.Time   `db:"end" json:"end"`
	Type      string      `db:"type" json:"type"`
	Status    LeaveStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

func (l *LeaveRequest) Window() TimeWindow {
	return TimeWindow{Start: l.Start, End: l.End}
}

// Blocks reports whether this request removes the crew member from the given
// window. Only approved requests block.
func (l *LeaveRequest) Blocks(w TimeWindow) bool {
	return l.Status == LeaveApproved && l.Window().Overlaps(w)
}

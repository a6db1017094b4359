package gorm

import (
	"encoding/json"
	"time"

	"aero-rhythm/crewops/internal/models/entities"
)

// DisruptionEvent is the persisted form of a disruption. Affected ids and
// free-form attributes are stored serialized.
type DisruptionEvent struct {
	ID              string     `gorm:"column:id;primaryKey;type:uuid"`
	Type            string     `gorm:"column:type;index"`
	Severity        string     `gorm:"column:severity"`
	AffectedFlights string     `gorm:"column:affected_flights;type:text"`
	AffectedCrew    string     `gorm:"column:affected_crew;type:text"`
	DetectedAt      time.Time  `gorm:"column:detected_at;index"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at"`
	Status          string     `gorm:"column:status;index;default:active"`
	Attributes      string     `gorm:"column:attributes;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (DisruptionEvent) TableName() string {
	return "disruptions"
}

// ToEntity deserializes the row into the domain shape.
func (d *DisruptionEvent) ToEntity() (*entities.DisruptionEvent, error) {
	ev := &entities.DisruptionEvent{
		ID:         d.ID,
		Type:       entities.DisruptionType(d.Type),
		Severity:   entities.Severity(d.Severity),
		DetectedAt: d.DetectedAt,
		ResolvedAt: d.ResolvedAt,
		Status:     entities.DisruptionStatus(d.Status),
	}
	if d.AffectedFlights != "" {
		if err := json.Unmarshal([]byte(d.AffectedFlights), &ev.AffectedFlights); err != nil {
			return nil, err
		}
	}
	if d.AffectedCrew != "" {
		if err := json.Unmarshal([]byte(d.AffectedCrew), &ev.AffectedCrew); err != nil {
			return nil, err
		}
	}
	if d.Attributes != "" {
		if err := json.Unmarshal([]byte(d.Attributes), &ev.Attributes); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// FromEntity serializes the domain shape into a row.
func FromEntity(ev *entities.DisruptionEvent) (*DisruptionEvent, error) {
	flights, err := json.Marshal(ev.AffectedFlights)
	if err != nil {
		return nil, err
	}
	crew, err := json.Marshal(ev.AffectedCrew)
	if err != nil {
		return nil, err
	}
	attrs, err := json.Marshal(ev.Attributes)
	if err != nil {
		return nil, err
	}
	return &DisruptionEvent{
		ID:              ev.ID,
		Type:            string(ev.Type),
		Severity:        string(ev.Severity),
		AffectedFlights: string(flights),
		AffectedCrew:    string(crew),
		DetectedAt:      ev.DetectedAt,
		ResolvedAt:      ev.ResolvedAt,
		Status:          string(ev.Status),
		Attributes:      string(attrs),
	}, nil
}

package domain

import "time"

type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

type IncidentStatus string

const (
	IncidentOpen         IncidentStatus = "open"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
)

// Incident is a safety report tied to a fixed location. The location is
// set at creation and never mutated by this module.
type Incident struct {
	ID        string           `json:"id"`
	TouristID string           `json:"tourist_id"`
	Type      string           `json:"type"`
	Severity  IncidentSeverity `json:"severity"`
	Status    IncidentStatus   `json:"status"`
	Location  GeoPoint         `json:"location"`
	CreatedAt time.Time        `json:"created_at"`
}

func ValidSeverity(s IncidentSeverity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

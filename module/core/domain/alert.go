package domain

import "time"

// Alert is append-only. At most one alert ever exists per
// (incident_id, geofence_id) pair; the storage layer enforces this.
type Alert struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incident_id"`
	GeofenceID string    `json:"geofence_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type AlertOutcome string

const (
	OutcomeCreated        AlertOutcome = "created"
	OutcomeAlreadyAlerted AlertOutcome = "already_alerted"
	OutcomeFailed         AlertOutcome = "failed"
)

// MatchResult reports the dispatch outcome for a single geofence. It is
// transient, returned to the caller, never persisted.
type MatchResult struct {
	GeofenceID string       `json:"geofence_id"`
	Outcome    AlertOutcome `json:"outcome"`
	Reason     string       `json:"reason,omitempty"`
}

func (r MatchResult) Succeeded() bool {
	return r.Outcome != OutcomeFailed
}

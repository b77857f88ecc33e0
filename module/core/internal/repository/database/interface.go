package database

import (
	"context"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
)

type GeofenceRepository interface {
	ListActive(ctx context.Context) ([]domain.Geofence, error)
}

type IncidentRepository interface {
	Insert(ctx context.Context, inc *domain.Incident) error
	Get(ctx context.Context, id string) (*domain.Incident, error)
}

type AlertRepository interface {
	// CreateIfAbsent atomically inserts the alert unless one already
	// exists for (incident_id, geofence_id). Returns created=false with a
	// nil error when the dedup key was already taken.
	CreateIfAbsent(ctx context.Context, alert *domain.Alert) (created bool, err error)
	ListByIncident(ctx context.Context, incidentID string) ([]domain.Alert, error)
}

package service

import (
	"context"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
)

type geofenceQuerier interface {
	Query(ctx context.Context, p domain.GeoPoint) ([]string, error)
}

// IncidentMatcher resolves which geofences contain an incident's
// location. It is a pure query: no side effects, safe to re-run for the
// same incident any number of times.
type IncidentMatcher struct {
	index geofenceQuerier
}

func NewIncidentMatcher(index geofenceQuerier) *IncidentMatcher {
	return &IncidentMatcher{index: index}
}

// Match returns the containing geofence IDs. An empty slice means no
// geofence covers the location; that is a normal outcome, not an error.
func (m *IncidentMatcher) Match(ctx context.Context, inc *domain.Incident) ([]string, error) {
	return m.index.Query(ctx, inc.Location)
}

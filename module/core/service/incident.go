package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
)

type incidentMatcher interface {
	Match(ctx context.Context, inc *domain.Incident) ([]string, error)
}

type alertDispatcher interface {
	Dispatch(ctx context.Context, inc *domain.Incident, geofenceIDs []string) []domain.MatchResult
}

type indexRefresher interface {
	Refresh(ctx context.Context) error
}

// IncidentDraft is the validated input for a new incident report.
type IncidentDraft struct {
	TouristID string
	Type      string
	Severity  domain.IncidentSeverity
	Location  domain.GeoPoint
}

// IncidentService exposes the two operations the surrounding
// application calls: create-and-detect, and re-evaluate. Both funnel
// through the same matcher and dedup-safe dispatcher, so re-running is
// always safe.
type IncidentService struct {
	incidents  database.IncidentRepository
	alerts     database.AlertRepository
	matcher    incidentMatcher
	dispatcher alertDispatcher
	index      indexRefresher
}

func NewIncidentService(incidents database.IncidentRepository, alerts database.AlertRepository, matcher incidentMatcher, dispatcher alertDispatcher, index indexRefresher) *IncidentService {
	return &IncidentService{
		incidents:  incidents,
		alerts:     alerts,
		matcher:    matcher,
		dispatcher: dispatcher,
		index:      index,
	}
}

// CreateIncidentWithGeofenceDetection persists the incident, matches it
// against the current geofence snapshot and dispatches one alert per
// containing geofence. The incident is returned alongside per-geofence
// outcomes even when some dispatch entries failed.
func (s *IncidentService) CreateIncidentWithGeofenceDetection(ctx context.Context, draft *IncidentDraft) (*domain.Incident, []domain.MatchResult, error) {
	if err := validateDraft(draft); err != nil {
		return nil, nil, err
	}

	inc := &domain.Incident{
		ID:        uuid.NewString(),
		TouristID: draft.TouristID,
		Type:      draft.Type,
		Severity:  draft.Severity,
		Status:    domain.IncidentOpen,
		Location:  draft.Location,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.incidents.Insert(ctx, inc); err != nil {
		return nil, nil, fmt.Errorf("insert incident: %w", err)
	}

	geofenceIDs, err := s.matcher.Match(ctx, inc)
	if err != nil {
		return inc, nil, fmt.Errorf("match incident %s: %w", inc.ID, err)
	}

	return inc, s.dispatcher.Dispatch(ctx, inc, geofenceIDs), nil
}

// CreateAlertsForExistingIncident re-runs matching against the current
// geofence set and dispatches again. Geofences already alerted report
// already_alerted; only newly covering geofences get new alerts. Safe
// to call any number of times.
func (s *IncidentService) CreateAlertsForExistingIncident(ctx context.Context, incidentID string) ([]domain.MatchResult, error) {
	inc, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	geofenceIDs, err := s.matcher.Match(ctx, inc)
	if err != nil {
		return nil, fmt.Errorf("match incident %s: %w", incidentID, err)
	}

	return s.dispatcher.Dispatch(ctx, inc, geofenceIDs), nil
}

func (s *IncidentService) ListAlerts(ctx context.Context, incidentID string) ([]domain.Alert, error) {
	return s.alerts.ListByIncident(ctx, incidentID)
}

// RefreshGeofences rebuilds the index snapshot. Called at startup and
// whenever the admin side reports a geofence change.
func (s *IncidentService) RefreshGeofences(ctx context.Context) error {
	return s.index.Refresh(ctx)
}

func validateDraft(draft *IncidentDraft) error {
	if draft.TouristID == "" {
		return fmt.Errorf("tourist_id: required")
	}
	if draft.Type == "" {
		return fmt.Errorf("type: required")
	}
	if !domain.ValidSeverity(draft.Severity) {
		return fmt.Errorf("severity: unknown value %q", draft.Severity)
	}
	if !draft.Location.Valid() {
		return fmt.Errorf("%w: latitude %f longitude %f", domain.ErrInvalidGeometry, draft.Location.Lat, draft.Location.Lon)
	}
	return nil
}

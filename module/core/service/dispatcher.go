package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/metrics"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/publisher"
)

const (
	maxCreateAttempts     = 3
	retryBackoff          = 100 * time.Millisecond
	defaultAttemptTimeout = 3 * time.Second
)

type geofenceLookup interface {
	Lookup(id string) (domain.Geofence, bool)
}

// AlertDispatcher turns matched geofence IDs into alert records, one
// per (incident, geofence) pair. Deduplication is delegated to the
// storage layer's CreateIfAbsent, so concurrent dispatches for the same
// incident (initial creation racing a re-evaluation) stay safe without
// in-process locking.
type AlertDispatcher struct {
	alerts         database.AlertRepository
	pub            publisher.AlertPublisher
	fences         geofenceLookup
	metrics        *metrics.Metrics
	attemptTimeout time.Duration
}

// attemptTimeout bounds each storage attempt so one hung call surfaces
// as that geofence's failure instead of stalling the whole dispatch;
// zero or negative falls back to the default.
func NewAlertDispatcher(alerts database.AlertRepository, pub publisher.AlertPublisher, fences geofenceLookup, m *metrics.Metrics, attemptTimeout time.Duration) *AlertDispatcher {
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &AlertDispatcher{
		alerts:         alerts,
		pub:            pub,
		fences:         fences,
		metrics:        m,
		attemptTimeout: attemptTimeout,
	}
}

// Dispatch attempts one alert per geofence and reports each outcome
// independently: a failure for one geofence never aborts the siblings.
// Cancellation stops new creation attempts but already committed alerts
// stand; alerts are append-only.
func (d *AlertDispatcher) Dispatch(ctx context.Context, inc *domain.Incident, geofenceIDs []string) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(geofenceIDs))
	for _, geofenceID := range geofenceIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, domain.MatchResult{
				GeofenceID: geofenceID,
				Outcome:    domain.OutcomeFailed,
				Reason:     "dispatch canceled: " + err.Error(),
			})
			continue
		}
		results = append(results, d.dispatchOne(ctx, inc, geofenceID))
	}
	return results
}

func (d *AlertDispatcher) dispatchOne(ctx context.Context, inc *domain.Incident, geofenceID string) domain.MatchResult {
	alert := &domain.Alert{
		ID:         uuid.NewString(),
		IncidentID: inc.ID,
		GeofenceID: geofenceID,
		CreatedAt:  time.Now().UTC(),
	}

	var (
		created bool
		lastErr error
	)
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
		created, lastErr = d.alerts.CreateIfAbsent(attemptCtx, alert)
		cancel()
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		log.Printf("alert dispatch: attempt %d for incident %s geofence %s: %v", attempt, inc.ID, geofenceID, lastErr)
		if attempt < maxCreateAttempts {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
			}
		}
	}

	if lastErr != nil {
		d.metrics.IncDispatchFailures()
		return domain.MatchResult{
			GeofenceID: geofenceID,
			Outcome:    domain.OutcomeFailed,
			Reason:     lastErr.Error(),
		}
	}

	if !created {
		// idempotent no-op: the dedup key already has its alert
		d.metrics.IncDuplicatesSuppressed()
		log.Printf("alert dispatch: duplicate suppressed for incident %s geofence %s", inc.ID, geofenceID)
		return domain.MatchResult{GeofenceID: geofenceID, Outcome: domain.OutcomeAlreadyAlerted}
	}

	d.metrics.IncAlertsCreated()
	d.notify(ctx, inc, alert)
	return domain.MatchResult{GeofenceID: geofenceID, Outcome: domain.OutcomeCreated}
}

// notify is best effort: the alert record is the source of truth, a
// failed fanout only loses the push, so it is logged and not surfaced
// as a dispatch failure.
func (d *AlertDispatcher) notify(ctx context.Context, inc *domain.Incident, alert *domain.Alert) {
	n := &publisher.AlertNotification{
		Alert:    *alert,
		Severity: inc.Severity,
		Location: inc.Location,
	}
	if gf, ok := d.fences.Lookup(alert.GeofenceID); ok {
		n.GeofenceName = gf.Name
	}
	if err := d.pub.PublishAlert(ctx, n); err != nil {
		log.Printf("alert dispatch: publish notification for alert %s: %v", alert.ID, err)
	}
}

package publisher

import (
	"context"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
)

// AlertNotification is the message fanned out to geofence subscribers
// when a new alert is created. Duplicate-suppressed dispatches publish
// nothing.
type AlertNotification struct {
	Alert        domain.Alert
	GeofenceName string
	Severity     domain.IncidentSeverity
	Location     domain.GeoPoint
}

type AlertPublisher interface {
	PublishAlert(ctx context.Context, n *AlertNotification) error
}

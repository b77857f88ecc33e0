package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AlertsCreated        prometheus.Counter
	DuplicatesSuppressed prometheus.Counter
	DispatchFailures     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AlertsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safety_alerts_created_total",
			Help: "Total number of geofence alerts created",
		}),
		DuplicatesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safety_alerts_duplicates_suppressed_total",
			Help: "Total number of alert creations suppressed by the dedup key",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safety_alert_dispatch_failures_total",
			Help: "Total number of per-geofence dispatch failures after retries",
		}),
	}
}

func (m *Metrics) IncAlertsCreated() {
	if m != nil {
		m.AlertsCreated.Inc()
	}
}

func (m *Metrics) IncDuplicatesSuppressed() {
	if m != nil {
		m.DuplicatesSuppressed.Inc()
	}
}

func (m *Metrics) IncDispatchFailures() {
	if m != nil {
		m.DispatchFailures.Inc()
	}
}

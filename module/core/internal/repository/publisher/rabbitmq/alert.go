package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

const (
	exchangeName = "safety.events"
	queueName    = "incident_alerts"
)

type AlertPublisher struct {
	ch *amqp.Channel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type alertMessage struct {
	AlertID      string                  `json:"alert_id"`
	IncidentID   string                  `json:"incident_id"`
	GeofenceID   string                  `json:"geofence_id"`
	GeofenceName string                  `json:"geofence_name"`
	Severity     domain.IncidentSeverity `json:"severity"`
	Latitude     float64                 `json:"latitude"`
	Longitude    float64                 `json:"longitude"`
	CreatedAt    int64                   `json:"created_at"`
}

func (p *AlertPublisher) PublishAlert(ctx context.Context, n *publisher.AlertNotification) error {
	msg := alertMessage{
		AlertID:      n.Alert.ID,
		IncidentID:   n.Alert.IncidentID,
		GeofenceID:   n.Alert.GeofenceID,
		GeofenceName: n.GeofenceName,
		Severity:     n.Severity,
		Latitude:     n.Location.Lat,
		Longitude:    n.Location.Lon,
		CreatedAt:    n.Alert.CreatedAt.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

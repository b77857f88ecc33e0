package core

import (
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/handler/http"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/handler/subscriber"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/metrics"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database/postgres"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/publisher/rabbitmq"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/service"
)

type Module struct {
	IncidentSvc *service.IncidentService
	Index       *service.GeofenceIndex
	handler     *http.IncidentHandler
	subscriber  *subscriber.IncidentSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, dispatchTimeout time.Duration) (*Module, error) {
	geofenceRepo := postgres.NewGeofenceRepo(db)
	incidentRepo := postgres.NewIncidentRepo(db)
	alertRepo := postgres.NewAlertRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	index := service.NewGeofenceIndex(geofenceRepo)
	matcher := service.NewIncidentMatcher(index)
	dispatcher := service.NewAlertDispatcher(alertRepo, alertPub, index, metrics.New(), dispatchTimeout)
	incidentSvc := service.NewIncidentService(incidentRepo, alertRepo, matcher, dispatcher, index)

	h := http.NewIncidentHandler(incidentSvc)
	sub := subscriber.NewIncidentSubscriber(mqttClient, incidentSvc)

	return &Module{
		IncidentSvc: incidentSvc,
		Index:       index,
		handler:     h,
		subscriber:  sub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/service"
)

const topicPattern = "/safety/tourist/+/incident"

type incidentService interface {
	CreateIncidentWithGeofenceDetection(ctx context.Context, draft *service.IncidentDraft) (*domain.Incident, []domain.MatchResult, error)
}

type incidentMessage struct {
	TouristID string  `json:"tourist_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// IncidentSubscriber feeds device-reported incidents into geofence
// detection, the same path the HTTP surface uses.
type IncidentSubscriber struct {
	client      mqtt.Client
	incidentSvc incidentService
}

func NewIncidentSubscriber(client mqtt.Client, incidentSvc incidentService) *IncidentSubscriber {
	return &IncidentSubscriber{
		client:      client,
		incidentSvc: incidentSvc,
	}
}

func (s *IncidentSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *IncidentSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw incidentMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid incident message: %v", err)
		return
	}

	if err := validateIncidentMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	draft := &service.IncidentDraft{
		TouristID: raw.TouristID,
		Type:      raw.Type,
		Severity:  domain.IncidentSeverity(raw.Severity),
		Location:  domain.GeoPoint{Lat: raw.Latitude, Lon: raw.Longitude},
	}

	inc, results, err := s.incidentSvc.CreateIncidentWithGeofenceDetection(context.Background(), draft)
	if err != nil {
		log.Printf("incident detection error: %v", err)
		return
	}

	for _, res := range results {
		if !res.Succeeded() {
			log.Printf("incident %s: alert for geofence %s failed: %s", inc.ID, res.GeofenceID, res.Reason)
		}
	}
}

func validateIncidentMessage(msg *incidentMessage) error {
	if msg.TouristID == "" {
		return fmt.Errorf("tourist_id: required")
	}
	if msg.Type == "" {
		return fmt.Errorf("type: required")
	}
	if !domain.ValidSeverity(domain.IncidentSeverity(msg.Severity)) {
		return fmt.Errorf("severity: unknown value %q", msg.Severity)
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}

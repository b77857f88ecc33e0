package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/service"
)

type incidentService interface {
	CreateIncidentWithGeofenceDetection(ctx context.Context, draft *service.IncidentDraft) (*domain.Incident, []domain.MatchResult, error)
	CreateAlertsForExistingIncident(ctx context.Context, incidentID string) ([]domain.MatchResult, error)
	ListAlerts(ctx context.Context, incidentID string) ([]domain.Alert, error)
	RefreshGeofences(ctx context.Context) error
}

type incidentRequest struct {
	TouristID string  `json:"tourist_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type incidentResponse struct {
	ID        string  `json:"id"`
	TouristID string  `json:"tourist_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt int64   `json:"created_at"`
}

type createIncidentResponse struct {
	Incident     incidentResponse     `json:"incident"`
	AlertResults []domain.MatchResult `json:"alert_results"`
}

type alertResultsResponse struct {
	AlertResults []domain.MatchResult `json:"alert_results"`
}

type IncidentHandler struct {
	incidentSvc incidentService
}

func NewIncidentHandler(incidentSvc incidentService) *IncidentHandler {
	return &IncidentHandler{incidentSvc: incidentSvc}
}

func (h *IncidentHandler) Register(r *gin.RouterGroup) {
	r.POST("/incidents", h.CreateIncident)
	r.POST("/incidents/:incident_id/alerts", h.RecreateAlerts)
	r.GET("/incidents/:incident_id/alerts", h.ListAlerts)
	r.POST("/geofences/refresh", h.RefreshGeofences)
}

func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	draft := &service.IncidentDraft{
		TouristID: req.TouristID,
		Type:      req.Type,
		Severity:  domain.IncidentSeverity(req.Severity),
		Location:  domain.GeoPoint{Lat: req.Latitude, Lon: req.Longitude},
	}

	inc, results, err := h.incidentSvc.CreateIncidentWithGeofenceDetection(c.Request.Context(), draft)
	if err != nil {
		if inc == nil {
			// nothing persisted: the draft was rejected
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "geofence detection failed"})
		return
	}

	c.JSON(http.StatusCreated, createIncidentResponse{
		Incident:     toIncidentResponse(inc),
		AlertResults: results,
	})
}

func (h *IncidentHandler) RecreateAlerts(c *gin.Context) {
	incidentID := c.Param("incident_id")

	results, err := h.incidentSvc.CreateAlertsForExistingIncident(c.Request.Context(), incidentID)
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "alert re-evaluation failed"})
		return
	}

	c.JSON(http.StatusOK, alertResultsResponse{AlertResults: results})
}

func (h *IncidentHandler) ListAlerts(c *gin.Context) {
	incidentID := c.Param("incident_id")

	alerts, err := h.incidentSvc.ListAlerts(c.Request.Context(), incidentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *IncidentHandler) RefreshGeofences(c *gin.Context) {
	if err := h.incidentSvc.RefreshGeofences(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "geofence refresh failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func toIncidentResponse(inc *domain.Incident) incidentResponse {
	return incidentResponse{
		ID:        inc.ID,
		TouristID: inc.TouristID,
		Type:      inc.Type,
		Severity:  string(inc.Severity),
		Status:    string(inc.Status),
		Latitude:  inc.Location.Lat,
		Longitude: inc.Location.Lon,
		CreatedAt: inc.CreatedAt.Unix(),
	}
}

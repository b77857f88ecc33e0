package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/publisher"
)

type mockAlertRepo struct {
	createIfAbsentFn func(ctx context.Context, alert *domain.Alert) (bool, error)
	listByIncidentFn func(ctx context.Context, incidentID string) ([]domain.Alert, error)
	created          []*domain.Alert
}

func (m *mockAlertRepo) CreateIfAbsent(ctx context.Context, alert *domain.Alert) (bool, error) {
	created, err := m.createIfAbsentFn(ctx, alert)
	if created {
		m.created = append(m.created, alert)
	}
	return created, err
}

func (m *mockAlertRepo) ListByIncident(ctx context.Context, incidentID string) ([]domain.Alert, error) {
	return m.listByIncidentFn(ctx, incidentID)
}

type mockAlertPublisher struct {
	publishAlertFn func(ctx context.Context, n *publisher.AlertNotification) error
	calls          []*publisher.AlertNotification
}

func (m *mockAlertPublisher) PublishAlert(ctx context.Context, n *publisher.AlertNotification) error {
	m.calls = append(m.calls, n)
	if m.publishAlertFn != nil {
		return m.publishAlertFn(ctx, n)
	}
	return nil
}

type mockLookup struct {
	fences map[string]domain.Geofence
}

func (m *mockLookup) Lookup(id string) (domain.Geofence, bool) {
	gf, ok := m.fences[id]
	return gf, ok
}

func testIncident() *domain.Incident {
	return &domain.Incident{
		ID:       "I1",
		Severity: domain.SeverityHigh,
		Location: domain.GeoPoint{Lat: 40.01, Lon: -73.0},
	}
}

func TestDispatch_CreatesOnePerGeofence(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			return true, nil
		},
	}
	pub := &mockAlertPublisher{}
	lookup := &mockLookup{fences: map[string]domain.Geofence{
		"G1": {ID: "G1", Name: "old town"},
	}}
	d := NewAlertDispatcher(repo, pub, lookup, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1", "G2"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Outcome != domain.OutcomeCreated {
			t.Errorf("geofence %s: expected created, got %s (%s)", res.GeofenceID, res.Outcome, res.Reason)
		}
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 alerts created, got %d", len(repo.created))
	}
	if len(pub.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(pub.calls))
	}
	if pub.calls[0].GeofenceName != "old town" {
		t.Errorf("expected notification to carry geofence name, got %q", pub.calls[0].GeofenceName)
	}
}

func TestDispatch_DuplicateReportsAlreadyAlerted(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			return false, nil
		},
	}
	pub := &mockAlertPublisher{}
	d := NewAlertDispatcher(repo, pub, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Outcome != domain.OutcomeAlreadyAlerted {
		t.Fatalf("expected already_alerted, got %s", results[0].Outcome)
	}
	if len(pub.calls) != 0 {
		t.Fatalf("duplicate must not publish a notification, got %d", len(pub.calls))
	}
}

func TestDispatch_Idempotent(t *testing.T) {
	// in-memory stand-in for the unique constraint
	keys := map[string]bool{}
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, alert *domain.Alert) (bool, error) {
			k := alert.IncidentID + "/" + alert.GeofenceID
			if keys[k] {
				return false, nil
			}
			keys[k] = true
			return true, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	first := d.Dispatch(context.Background(), testIncident(), []string{"G1"})
	second := d.Dispatch(context.Background(), testIncident(), []string{"G1"})

	if first[0].Outcome != domain.OutcomeCreated {
		t.Fatalf("first dispatch: expected created, got %s", first[0].Outcome)
	}
	if second[0].Outcome != domain.OutcomeAlreadyAlerted {
		t.Fatalf("second dispatch: expected already_alerted, got %s", second[0].Outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(repo.created))
	}
}

func TestDispatch_PartialFailure(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, alert *domain.Alert) (bool, error) {
			if alert.GeofenceID == "G2" {
				return false, errors.New("storage timeout")
			}
			return true, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1", "G2", "G3"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	byID := map[string]domain.MatchResult{}
	for _, res := range results {
		byID[res.GeofenceID] = res
	}
	if byID["G1"].Outcome != domain.OutcomeCreated {
		t.Errorf("G1: expected created, got %s", byID["G1"].Outcome)
	}
	if byID["G3"].Outcome != domain.OutcomeCreated {
		t.Errorf("G3: expected created, got %s", byID["G3"].Outcome)
	}
	if byID["G2"].Outcome != domain.OutcomeFailed {
		t.Errorf("G2: expected failed, got %s", byID["G2"].Outcome)
	}
	if byID["G2"].Reason == "" {
		t.Error("G2: expected a failure reason")
	}
	for _, a := range repo.created {
		if a.GeofenceID == "G2" {
			t.Error("no alert must exist for G2 after a failed dispatch")
		}
	}
}

func TestDispatch_RetriesTransientError(t *testing.T) {
	attempts := 0
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			attempts++
			if attempts < 3 {
				return false, errors.New("connection reset")
			}
			return true, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1"})
	if results[0].Outcome != domain.OutcomeCreated {
		t.Fatalf("expected created after retries, got %s (%s)", results[0].Outcome, results[0].Reason)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDispatch_BoundedRetries(t *testing.T) {
	attempts := 0
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			attempts++
			return false, errors.New("still down")
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1"})
	if results[0].Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failed, got %s", results[0].Outcome)
	}
	if attempts != maxCreateAttempts {
		t.Fatalf("expected %d attempts, got %d", maxCreateAttempts, attempts)
	}
}

func TestDispatch_AttemptTimeoutSurfacesAsFailure(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(ctx context.Context, alert *domain.Alert) (bool, error) {
			if alert.GeofenceID == "G2" {
				// hangs until the per-attempt deadline fires
				<-ctx.Done()
				return false, ctx.Err()
			}
			return true, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 20*time.Millisecond)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1", "G2"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	byID := map[string]domain.MatchResult{}
	for _, res := range results {
		byID[res.GeofenceID] = res
	}
	if byID["G1"].Outcome != domain.OutcomeCreated {
		t.Errorf("G1: expected created, got %s", byID["G1"].Outcome)
	}
	if byID["G2"].Outcome != domain.OutcomeFailed {
		t.Fatalf("G2: expected failed, got %s", byID["G2"].Outcome)
	}
	if !strings.Contains(byID["G2"].Reason, context.DeadlineExceeded.Error()) {
		t.Errorf("G2: expected a deadline failure reason, got %q", byID["G2"].Reason)
	}
}

func TestDispatch_CanceledContextStopsNewCreations(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			t.Fatal("no creation must be attempted after cancellation")
			return false, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Dispatch(ctx, testIncident(), []string{"G1", "G2"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Outcome != domain.OutcomeFailed {
			t.Errorf("geofence %s: expected failed, got %s", res.GeofenceID, res.Outcome)
		}
	}
}

func TestDispatch_PublishFailureDoesNotFailEntry(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			return true, nil
		},
	}
	pub := &mockAlertPublisher{
		publishAlertFn: func(_ context.Context, _ *publisher.AlertNotification) error {
			return errors.New("rabbitmq down")
		},
	}
	d := NewAlertDispatcher(repo, pub, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), []string{"G1"})
	if results[0].Outcome != domain.OutcomeCreated {
		t.Fatalf("alert record is the source of truth, expected created, got %s", results[0].Outcome)
	}
}

func TestDispatch_NoGeofences(t *testing.T) {
	repo := &mockAlertRepo{
		createIfAbsentFn: func(_ context.Context, _ *domain.Alert) (bool, error) {
			t.Fatal("no creation expected")
			return false, nil
		},
	}
	d := NewAlertDispatcher(repo, &mockAlertPublisher{}, &mockLookup{}, nil, 0)

	results := d.Dispatch(context.Background(), testIncident(), nil)
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
	if results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
	body, err := json.Marshal(results)
	if err != nil {
		t.Fatalf("marshal results: %v", err)
	}
	if string(body) != "[]" {
		t.Fatalf("expected empty results to serialize as [], got %s", body)
	}
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// CreateIfAbsent relies on the unique constraint over
// (incident_id, geofence_id). Concurrent dispatches for the same pair
// race at the database, not in process; exactly one insert wins.
func (r *AlertRepo) CreateIfAbsent(ctx context.Context, alert *domain.Alert) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (id, incident_id, geofence_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (incident_id, geofence_id) DO NOTHING`,
		alert.ID, alert.IncidentID, alert.GeofenceID, alert.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AlertRepo) ListByIncident(ctx context.Context, incidentID string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, incident_id, geofence_id, created_at FROM alerts WHERE incident_id = $1 ORDER BY created_at ASC`,
		incidentID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.IncidentID, &a.GeofenceID, &a.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

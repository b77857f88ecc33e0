package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
)

var _ database.IncidentRepository = (*IncidentRepo)(nil)

type IncidentRepo struct {
	db *sql.DB
}

func NewIncidentRepo(db *sql.DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

func (r *IncidentRepo) Insert(ctx context.Context, inc *domain.Incident) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incidents (id, tourist_id, type, severity, status, latitude, longitude, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inc.ID, inc.TouristID, inc.Type, inc.Severity, inc.Status, inc.Location.Lat, inc.Location.Lon, inc.CreatedAt,
	)
	return err
}

func (r *IncidentRepo) Get(ctx context.Context, id string) (*domain.Incident, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tourist_id, type, severity, status, latitude, longitude, created_at FROM incidents WHERE id = $1`,
		id,
	)

	var inc domain.Incident
	err := row.Scan(&inc.ID, &inc.TouristID, &inc.Type, &inc.Severity, &inc.Status, &inc.Location.Lat, &inc.Location.Lon, &inc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIncidentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

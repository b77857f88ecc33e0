package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) ListActive(ctx context.Context) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, kind, center_lat, center_lon, radius_meters, vertices FROM geofences WHERE active = TRUE`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		var (
			gf        domain.Geofence
			centerLat sql.NullFloat64
			centerLon sql.NullFloat64
			radius    sql.NullFloat64
			vertices  []byte
		)
		if err := rows.Scan(&gf.ID, &gf.Name, &gf.OwnerID, &gf.Kind, &centerLat, &centerLon, &radius, &vertices); err != nil {
			return nil, err
		}

		switch gf.Kind {
		case domain.GeofenceCircle:
			gf.Circle = &domain.Circle{
				Center:       domain.GeoPoint{Lat: centerLat.Float64, Lon: centerLon.Float64},
				RadiusMeters: radius.Float64,
			}
		case domain.GeofencePolygon:
			var verts []domain.GeoPoint
			if err := json.Unmarshal(vertices, &verts); err != nil {
				return nil, fmt.Errorf("geofence %s vertices: %w", gf.ID, err)
			}
			gf.Polygon = &domain.Polygon{Vertices: verts}
		}

		results = append(results, gf)
	}
	return results, rows.Err()
}

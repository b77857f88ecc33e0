package domain

type GeofenceKind string

const (
	GeofenceCircle  GeofenceKind = "circle"
	GeofencePolygon GeofenceKind = "polygon"
)

// Geofence is immutable for matching purposes: edits on the admin side
// produce a new row, and the index only ever sees whole snapshots.
type Geofence struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	OwnerID string       `json:"owner_id"`
	Kind    GeofenceKind `json:"kind"`
	Circle  *Circle      `json:"circle,omitempty"`
	Polygon *Polygon     `json:"polygon,omitempty"`
}

// WellFormed reports whether the geofence has a usable shape. Malformed
// geofences are skipped at index build time rather than failing queries.
func (g *Geofence) WellFormed() bool {
	switch g.Kind {
	case GeofenceCircle:
		return g.Circle != nil && g.Circle.RadiusMeters > 0 && g.Circle.Center.Valid()
	case GeofencePolygon:
		if g.Polygon == nil || len(g.Polygon.Vertices) < 3 {
			return false
		}
		for _, v := range g.Polygon.Vertices {
			if !v.Valid() {
				return false
			}
		}
		return true
	}
	return false
}

package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/domain"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core/internal/repository/database"
)

const (
	earthRadiusMeters = 6371000

	// degrees of padding on bounding boxes, absorbs float rounding at
	// the box edge
	bboxSlack = 1e-6

	maxConcurrentChecks = 8
)

type boundingBox struct {
	minLat, maxLat float64
	minLon, maxLon float64
}

func (b boundingBox) contains(p domain.GeoPoint) bool {
	return p.Lat >= b.minLat && p.Lat <= b.maxLat &&
		p.Lon >= b.minLon && p.Lon <= b.maxLon
}

type indexedGeofence struct {
	gf  domain.Geofence
	box boundingBox
}

type snapshot struct {
	geofences []indexedGeofence
	byID      map[string]domain.Geofence
}

// GeofenceIndex answers "which geofences contain point P" over an
// immutable snapshot of the active geofence set. Refresh swaps in a
// whole new snapshot, so concurrent queries never observe a partially
// updated index. The index has no write path of its own; geofence
// storage is owned by the admin side.
type GeofenceIndex struct {
	repo database.GeofenceRepository
	snap atomic.Pointer[snapshot]
}

func NewGeofenceIndex(repo database.GeofenceRepository) *GeofenceIndex {
	idx := &GeofenceIndex{repo: repo}
	idx.snap.Store(&snapshot{byID: map[string]domain.Geofence{}})
	return idx
}

// Refresh rebuilds the snapshot from GeofenceRepository.ListActive.
// Malformed geofences are skipped, not fatal: one bad row must not take
// alerting down for everyone else.
func (i *GeofenceIndex) Refresh(ctx context.Context) error {
	geofences, err := i.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active geofences: %w", err)
	}

	snap := &snapshot{
		geofences: make([]indexedGeofence, 0, len(geofences)),
		byID:      make(map[string]domain.Geofence, len(geofences)),
	}
	for _, gf := range geofences {
		if !gf.WellFormed() {
			log.Printf("geofence index: skipping malformed geofence %s", gf.ID)
			continue
		}
		snap.geofences = append(snap.geofences, indexedGeofence{gf: gf, box: boundsOf(&gf)})
		snap.byID[gf.ID] = gf
	}

	i.snap.Store(snap)
	return nil
}

// Query returns the IDs of every geofence containing p, deduplicated,
// in no particular order. Candidates passing the bounding-box prefilter
// are tested concurrently on a bounded pool; containment tests are pure
// so they share no mutable state.
func (i *GeofenceIndex) Query(ctx context.Context, p domain.GeoPoint) ([]string, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: latitude %f longitude %f", domain.ErrInvalidGeometry, p.Lat, p.Lon)
	}

	snap := i.snap.Load()

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)

	var mu sync.Mutex
	seen := make(map[string]struct{})
	var ids []string

	for _, entry := range snap.geofences {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !entry.box.contains(p) {
			continue
		}
		entry := entry
		g.Go(func() error {
			if !shapeContains(&entry.gf, p) {
				return nil
			}
			mu.Lock()
			if _, dup := seen[entry.gf.ID]; !dup {
				seen[entry.gf.ID] = struct{}{}
				ids = append(ids, entry.gf.ID)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Lookup returns the snapshot's copy of a geofence, for callers that
// need its metadata (e.g. the name carried on alert notifications).
func (i *GeofenceIndex) Lookup(id string) (domain.Geofence, bool) {
	gf, ok := i.snap.Load().byID[id]
	return gf, ok
}

// shapeContains applies the inclusive-boundary containment policy: a
// point exactly at radius distance, or exactly on a polygon edge, is
// contained.
func shapeContains(gf *domain.Geofence, p domain.GeoPoint) bool {
	switch gf.Kind {
	case domain.GeofenceCircle:
		c := gf.Circle
		return haversine(p.Lat, p.Lon, c.Center.Lat, c.Center.Lon) <= c.RadiusMeters
	case domain.GeofencePolygon:
		return polygonContains(gf.Polygon.Vertices, p)
	}
	return false
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

const edgeEpsilon = 1e-9

// polygonContains runs an even-odd ray cast over the vertex sequence in
// the (lon, lat) plane, with an explicit on-edge check first so boundary
// points are contained regardless of ray parity. Vertices are implicitly
// closed. Polygons crossing the antimeridian give undefined results.
func polygonContains(verts []domain.GeoPoint, p domain.GeoPoint) bool {
	n := len(verts)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if onSegment(verts[i], verts[(i+1)%n], p) {
			return true
		}
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := verts[i], verts[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			crossLon := vi.Lon + (p.Lat-vi.Lat)/(vj.Lat-vi.Lat)*(vj.Lon-vi.Lon)
			if p.Lon < crossLon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func onSegment(a, b, p domain.GeoPoint) bool {
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if math.Abs(cross) > edgeEpsilon {
		return false
	}
	return p.Lon >= math.Min(a.Lon, b.Lon)-edgeEpsilon && p.Lon <= math.Max(a.Lon, b.Lon)+edgeEpsilon &&
		p.Lat >= math.Min(a.Lat, b.Lat)-edgeEpsilon && p.Lat <= math.Max(a.Lat, b.Lat)+edgeEpsilon
}

// boundsOf computes a slightly padded bounding box so the prefilter can
// never reject a point the exact test would accept.
func boundsOf(gf *domain.Geofence) boundingBox {
	switch gf.Kind {
	case domain.GeofenceCircle:
		c := gf.Circle
		angular := c.RadiusMeters / earthRadiusMeters
		dLat := toDeg(angular) + bboxSlack
		if c.Center.Lat-dLat <= -90 || c.Center.Lat+dLat >= 90 {
			// the cap reaches a pole and can span all longitudes
			return boundingBox{
				minLat: math.Max(c.Center.Lat-dLat, -90),
				maxLat: math.Min(c.Center.Lat+dLat, 90),
				minLon: -180,
				maxLon: 180,
			}
		}
		// widest longitudinal half-width of a spherical cap, reached
		// poleward of the center latitude
		dLon := toDeg(math.Asin(math.Min(1, math.Sin(angular)/math.Cos(toRad(c.Center.Lat))))) + bboxSlack
		return boundingBox{
			minLat: c.Center.Lat - dLat,
			maxLat: c.Center.Lat + dLat,
			minLon: math.Max(c.Center.Lon-dLon, -180),
			maxLon: math.Min(c.Center.Lon+dLon, 180),
		}
	case domain.GeofencePolygon:
		box := boundingBox{minLat: 90, maxLat: -90, minLon: 180, maxLon: -180}
		for _, v := range gf.Polygon.Vertices {
			box.minLat = math.Min(box.minLat, v.Lat)
			box.maxLat = math.Max(box.maxLat, v.Lat)
			box.minLon = math.Min(box.minLon, v.Lon)
			box.maxLon = math.Max(box.maxLon, v.Lon)
		}
		return box
	}
	return boundingBox{}
}

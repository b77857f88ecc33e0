package domain

import "testing"

func TestGeoPointValid(t *testing.T) {
	cases := []struct {
		p     GeoPoint
		valid bool
	}{
		{GeoPoint{Lat: 40.0, Lon: -73.0}, true},
		{GeoPoint{Lat: 90, Lon: 180}, true},
		{GeoPoint{Lat: -90, Lon: -180}, true},
		{GeoPoint{Lat: 90.01, Lon: 0}, false},
		{GeoPoint{Lat: 0, Lon: -180.01}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.valid {
			t.Errorf("(%f,%f): expected %v, got %v", tc.p.Lat, tc.p.Lon, tc.valid, got)
		}
	}
}

func TestGeofenceWellFormed(t *testing.T) {
	circle := Geofence{Kind: GeofenceCircle, Circle: &Circle{Center: GeoPoint{Lat: 40, Lon: -73}, RadiusMeters: 5000}}
	if !circle.WellFormed() {
		t.Error("expected circle to be well formed")
	}

	zeroRadius := Geofence{Kind: GeofenceCircle, Circle: &Circle{Center: GeoPoint{Lat: 40, Lon: -73}}}
	if zeroRadius.WellFormed() {
		t.Error("zero radius must not be well formed")
	}

	polygon := Geofence{Kind: GeofencePolygon, Polygon: &Polygon{Vertices: []GeoPoint{{0, 0}, {0, 1}, {1, 1}}}}
	if !polygon.WellFormed() {
		t.Error("expected triangle to be well formed")
	}

	twoVerts := Geofence{Kind: GeofencePolygon, Polygon: &Polygon{Vertices: []GeoPoint{{0, 0}, {0, 1}}}}
	if twoVerts.WellFormed() {
		t.Error("two vertices must not be well formed")
	}

	noShape := Geofence{Kind: GeofenceCircle}
	if noShape.WellFormed() {
		t.Error("missing shape must not be well formed")
	}
}

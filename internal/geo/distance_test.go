package geo

import (
	"math"
	"testing"

	"github.com/incident-watch/backend/internal/model"
)

func TestDistanceKM_Zero(t *testing.T) {
	p := model.GeoPoint{Lat: 25.6866, Lon: -100.3161}
	if d := DistanceKM(p, p); d != 0 {
		t.Errorf("distance to self: got %f, want 0", d)
	}
}

func TestDistanceKM_KnownDistance(t *testing.T) {
	// Monterrey macroplaza to San Pedro centro, roughly 9 km.
	a := model.GeoPoint{Lat: 25.6694, Lon: -100.3098}
	b := model.GeoPoint{Lat: 25.6573, Lon: -100.4027}
	d := DistanceKM(a, b)
	if d < 8 || d > 11 {
		t.Errorf("got %f km, want roughly 9 km", d)
	}
}

func TestDistanceKM_Symmetry(t *testing.T) {
	a := model.GeoPoint{Lat: 25.5930, Lon: -100.2570}
	b := model.GeoPoint{Lat: 25.7460, Lon: -100.4200}
	if d1, d2 := DistanceKM(a, b), DistanceKM(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("asymmetric distance: %f vs %f", d1, d2)
	}
}

func TestDistanceKM_GrowsWithSeparation(t *testing.T) {
	origin := model.GeoPoint{Lat: 25.65, Lon: -100.30}
	near := model.GeoPoint{Lat: 25.66, Lon: -100.30}
	far := model.GeoPoint{Lat: 25.75, Lon: -100.30}
	if DistanceKM(origin, near) >= DistanceKM(origin, far) {
		t.Error("closer point must yield smaller distance")
	}
}

package geo

import (
	"testing"

	"github.com/incident-watch/backend/internal/model"
)

var testPOIs = []model.PointOfInterest{
	{
		Name:         "Costco Carretera Nacional",
		Coords:       model.GeoPoint{Lat: 25.5930, Lon: -100.2570},
		KeyCorridors: []string{"carretera nacional", "la estanzuela"},
	},
	{
		Name:         "Costco Cumbres",
		Coords:       model.GeoPoint{Lat: 25.7460, Lon: -100.4200},
		KeyCorridors: []string{"paseo de los leones", "cumbres"},
	},
	{
		Name:         "Costco Valle Oriente",
		Coords:       model.GeoPoint{Lat: 25.6390, Lon: -100.3120},
		KeyCorridors: []string{"lázaro cárdenas", "valle oriente"},
	},
}

func TestResolveProximity_WithinRadius(t *testing.T) {
	// A point a few hundred metres from Valle Oriente.
	coords := model.GeoPoint{Lat: 25.6410, Lon: -100.3150}
	got := ResolveProximity(coords, "choque en avenida fundadores", testPOIs, 3.0)

	if !got.WithinRadius {
		t.Fatalf("expected within radius, distance %f", got.DistanceKM)
	}
	if got.Nearest.Name != "Costco Valle Oriente" {
		t.Errorf("Nearest: got %q, want Valle Oriente", got.Nearest.Name)
	}
	if got.MatchedCorridor != "" {
		t.Errorf("radius admission must not set MatchedCorridor, got %q", got.MatchedCorridor)
	}
}

func TestResolveProximity_OutOfRadius(t *testing.T) {
	// García, well away from all three points.
	coords := model.GeoPoint{Lat: 25.8170, Lon: -100.5890}
	got := ResolveProximity(coords, "incendio en zona industrial", testPOIs, 3.0)

	if got.WithinRadius {
		t.Errorf("expected out of radius, distance %f", got.DistanceKM)
	}
	if got.Nearest.Name != "Costco Cumbres" {
		t.Errorf("Nearest: got %q, want Cumbres", got.Nearest.Name)
	}
}

func TestResolveProximity_CorridorOverride(t *testing.T) {
	// Geocoded far from everything, but the text names an access corridor.
	coords := model.GeoPoint{Lat: 25.8170, Lon: -100.5890}
	got := ResolveProximity(coords, "Volcadura en la Carretera Nacional a la altura de El Uro", testPOIs, 3.0)

	if !got.WithinRadius {
		t.Fatal("corridor match must admit the event")
	}
	if got.MatchedCorridor != "carretera nacional" {
		t.Errorf("MatchedCorridor: got %q, want %q", got.MatchedCorridor, "carretera nacional")
	}
	if got.Nearest.Name != "Costco Carretera Nacional" {
		t.Errorf("Nearest: got %q, want Carretera Nacional", got.Nearest.Name)
	}

	// Distance must be recomputed against the corridor's POI, not the
	// geometrically nearest one.
	want := DistanceKM(coords, testPOIs[0].Coords)
	if got.DistanceKM != want {
		t.Errorf("DistanceKM: got %f, want %f", got.DistanceKM, want)
	}
}

func TestResolveProximity_CorridorOrderIsPOIOrder(t *testing.T) {
	coords := model.GeoPoint{Lat: 25.8170, Lon: -100.5890}
	// Text mentions corridors of two POIs; the first POI in list order wins.
	got := ResolveProximity(coords, "cierre en carretera nacional y en valle oriente", testPOIs, 3.0)

	if got.Nearest.Name != "Costco Carretera Nacional" {
		t.Errorf("Nearest: got %q, want first POI in order", got.Nearest.Name)
	}
}

func TestResolveProximity_NoPOIs(t *testing.T) {
	got := ResolveProximity(model.GeoPoint{Lat: 25.65, Lon: -100.31}, "texto", nil, 3.0)
	if got.WithinRadius {
		t.Error("no POIs can never be within radius")
	}
}

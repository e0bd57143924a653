package location

import (
	"strings"
	"testing"
)

func testExtractor() *Extractor {
	return NewExtractor(
		[]string{"Valle Oriente", "Cumbres", "Contry", "La Estanzuela"},
		[]string{"Monterrey", "Nuevo León", "área metropolitana"},
	)
}

func TestExtract_StructuredPatterns(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		name     string
		text     string
		wantPart string
	}{
		{
			name:     "avenue",
			text:     "Fuerte choque en avenida garza sada, dos heridos",
			wantPart: "garza sada",
		},
		{
			name:     "abbreviated avenue",
			text:     "Cierran av. revolución por manifestación",
			wantPart: "revolución",
		},
		{
			name:     "colonia",
			text:     "Incendio en colonia independencia, bomberos en el lugar",
			wantPart: "independencia",
		},
		{
			name:     "intersection",
			text:     "Accidente en el cruce de lázaro cárdenas y alfonso reyes",
			wantPart: "lázaro cárdenas",
		},
		{
			name:     "highway km",
			text:     "Volcadura en carretera nacional km 268",
			wantPart: "nacional",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if got == nil {
				t.Fatalf("Extract(%q) returned nil", tt.text)
			}
			if !got.IsSpecific {
				t.Error("structured match must be specific")
			}
			if !strings.Contains(got.RawText, tt.wantPart) {
				t.Errorf("RawText %q should contain %q", got.RawText, tt.wantPart)
			}
		})
	}
}

func TestExtract_SpecificArea(t *testing.T) {
	e := testExtractor()

	got := e.Extract("Reportan balacera en Valle Oriente esta tarde")
	if got == nil {
		t.Fatal("expected a candidate for a gazetteer area")
	}
	if got.RawText != "valle oriente" {
		t.Errorf("RawText: got %q, want %q", got.RawText, "valle oriente")
	}
	if !got.IsSpecific {
		t.Error("gazetteer hit must be specific")
	}
}

func TestExtract_GenericAreaYieldsNothing(t *testing.T) {
	e := testExtractor()

	// A bare city name is a place, but not one worth geocoding.
	if got := e.Extract("Alerta de seguridad en Monterrey"); got != nil {
		t.Errorf("generic area should yield nil, got %+v", got)
	}
}

func TestExtract_NoLocation(t *testing.T) {
	e := testExtractor()

	if got := e.Extract("Se registró un fuerte accidente esta mañana"); got != nil {
		t.Errorf("expected nil for text without location, got %+v", got)
	}
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/incident-watch/backend/internal/model"
)

type recordingSink struct {
	name      string
	alerts    []Alert
	summaries []RunSummary
	fail      bool
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, alert Alert) error {
	if s.fail {
		return errors.New("delivery failed")
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *recordingSink) SendSummary(_ context.Context, summary RunSummary) error {
	if s.fail {
		return errors.New("delivery failed")
	}
	s.summaries = append(s.summaries, summary)
	return nil
}

func TestNotifier_FansOutToAllSinks(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	n := NewNotifier(a, b)

	n.Notify(context.Background(), Alert{Title: "choque en garza sada"})

	if len(a.alerts) != 1 || len(b.alerts) != 1 {
		t.Errorf("alerts: got %d/%d, want 1/1", len(a.alerts), len(b.alerts))
	}
}

func TestNotifier_FailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &recordingSink{name: "broken", fail: true}
	healthy := &recordingSink{name: "healthy"}
	n := NewNotifier(broken, healthy)

	n.Notify(context.Background(), Alert{Title: "incendio en bodega"})

	if len(healthy.alerts) != 1 {
		t.Errorf("healthy sink should still receive the alert, got %d", len(healthy.alerts))
	}
}

func TestSeverityLabel(t *testing.T) {
	tests := []struct {
		severity int
		want     string
	}{
		{10, "CRÍTICA"},
		{9, "CRÍTICA"},
		{8, "GRAVE"},
		{7, "GRAVE"},
		{6, "MODERADA"},
		{5, "MODERADA"},
		{4, "MENOR"},
		{1, "MENOR"},
	}
	for _, tt := range tests {
		if got := severityLabel(tt.severity); got != tt.want {
			t.Errorf("severityLabel(%d): got %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestFormatAlertText(t *testing.T) {
	text := formatAlertText(Alert{
		Category:      model.CategoryTrafficAccident,
		Title:         "Choque múltiple en Garza Sada",
		Location:      "Av. Garza Sada y Alfonso Reyes",
		DistanceKM:    1.23,
		NearestPOI:    "Costco Valle Oriente",
		Source:        "Milenio",
		URL:           "https://example.com/nota",
		Summary:       "Tres vehículos involucrados",
		Severity:      8,
		Victims:       2,
		TrafficImpact: model.TrafficHigh,
		Emergency:     true,
	})

	for _, want := range []string{
		"ALERTA GRAVE",
		"Accidente Vial",
		"Choque múltiple en Garza Sada",
		"1.23 km de Costco Valle Oriente",
		"Severidad: 8/10",
		"Víctimas/Heridos: 2",
		"Impacto en tráfico: Alto",
		"Servicios de emergencia: Sí",
		"Resumen: Tres vehículos involucrados",
		"Fuente: Milenio",
		"URL: https://example.com/nota",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("alert text missing %q:\n%s", want, text)
		}
	}
}

func TestFormatAlertText_OmitsEmptyFields(t *testing.T) {
	text := formatAlertText(Alert{
		Category:   model.CategoryFire,
		Title:      "Incendio en bodega",
		Location:   "Colonia Moderna",
		NearestPOI: "Costco Cumbres",
		Source:     "INFO 7",
	})

	for _, unwanted := range []string{"Víctimas", "URL:", "Resumen:", "emergencia"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("alert text should omit %q:\n%s", unwanted, text)
		}
	}
}

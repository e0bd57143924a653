package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/logger"
)

// Alert is the finished payload handed to delivery sinks.
type Alert struct {
	Category      model.Category
	Title         string
	Location      string
	DistanceKM    float64
	NearestPOI    string
	POIAddress    string
	Source        string
	URL           string
	Summary       string
	Severity      int
	Victims       int
	TrafficImpact model.TrafficImpact
	Emergency     bool
}

// RunSummary describes one finished monitor cycle; it is delivered only
// when no alerts fired, so quiet runs remain visible.
type RunSummary struct {
	Timestamp     string
	ItemsAnalyzed int
	AlertsSent    int
}

// Sink delivers a finished alert. Implementations own their timeouts;
// delivery failure is the sink's to report and the notifier's to log.
type Sink interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
	SendSummary(ctx context.Context, summary RunSummary) error
}

// Notifier fans an alert out to every configured sink. A failing sink is
// logged and never propagated as a pipeline failure.
type Notifier struct {
	sinks []Sink
}

func NewNotifier(sinks ...Sink) *Notifier {
	return &Notifier{sinks: sinks}
}

func (n *Notifier) Notify(ctx context.Context, alert Alert) {
	for _, sink := range n.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			logger.Error("Alert delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("title", alert.Title),
				zap.Error(err),
			)
		}
	}
}

func (n *Notifier) NotifySummary(ctx context.Context, summary RunSummary) {
	for _, sink := range n.sinks {
		if err := sink.SendSummary(ctx, summary); err != nil {
			logger.Warn("Summary delivery failed",
				zap.String("sink", sink.Name()),
				zap.Error(err),
			)
		}
	}
}

func severityLabel(severity int) string {
	switch {
	case severity >= 9:
		return "CRÍTICA"
	case severity >= 7:
		return "GRAVE"
	case severity >= 5:
		return "MODERADA"
	default:
		return "MENOR"
	}
}

func trafficLabel(impact model.TrafficImpact) string {
	switch impact {
	case model.TrafficNone:
		return "Sin impacto"
	case model.TrafficLow:
		return "Bajo"
	case model.TrafficMedium:
		return "Moderado"
	case model.TrafficHigh:
		return "Alto"
	default:
		return string(impact)
	}
}

func formatAlertText(alert Alert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ALERTA %s\n", severityLabel(alert.Severity))
	fmt.Fprintf(&b, "Categoría: %s\n", alert.Category.Label())
	fmt.Fprintf(&b, "Título: %s\n", alert.Title)
	fmt.Fprintf(&b, "Ubicación: %s\n", alert.Location)
	fmt.Fprintf(&b, "Distancia: %.2f km de %s\n", alert.DistanceKM, alert.NearestPOI)
	if alert.Severity > 0 {
		fmt.Fprintf(&b, "Severidad: %d/10\n", alert.Severity)
	}
	if alert.Victims > 0 {
		fmt.Fprintf(&b, "Víctimas/Heridos: %d\n", alert.Victims)
	}
	if alert.TrafficImpact != "" {
		fmt.Fprintf(&b, "Impacto en tráfico: %s\n", trafficLabel(alert.TrafficImpact))
	}
	if alert.Emergency {
		b.WriteString("Servicios de emergencia: Sí\n")
	}
	if alert.Summary != "" {
		fmt.Fprintf(&b, "Resumen: %s\n", alert.Summary)
	}
	fmt.Fprintf(&b, "Fuente: %s\n", alert.Source)
	if alert.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", alert.URL)
	}

	return b.String()
}

package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ItemsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_watch_items_scanned_total",
			Help: "Candidate items entering the pipeline",
		},
		[]string{"source"},
	)

	ItemsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_watch_items_rejected_total",
			Help: "Items rejected, by rejection reason",
		},
		[]string{"reason"},
	)

	AlertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_watch_alerts_sent_total",
			Help: "Alerts emitted, by category",
		},
		[]string{"category"},
	)

	ItemDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "incident_watch_item_duration_seconds",
			Help:    "Time to fully process one candidate item",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	AIFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "incident_watch_ai_fallbacks_total",
			Help: "AI analyses that failed and fell back to the lexical path",
		},
	)

	GeocoderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_watch_geocoder_calls_total",
			Help: "Geocoder resolutions, by outcome",
		},
		[]string{"outcome"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "incident_watch_run_duration_seconds",
			Help:    "Duration of a full monitoring cycle",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
)

func Init() {
	prometheus.MustRegister(ItemsScanned)
	prometheus.MustRegister(ItemsRejected)
	prometheus.MustRegister(AlertsSent)
	prometheus.MustRegister(ItemDuration)
	prometheus.MustRegister(AIFallbacks)
	prometheus.MustRegister(GeocoderCalls)
	prometheus.MustRegister(RunDuration)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

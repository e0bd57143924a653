package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/notify"
	"github.com/incident-watch/backend/pkg/logger"
)

// AlertHub fans live alerts out to every connected WebSocket client. It
// implements notify.Sink so the pipeline can treat it like any other
// delivery channel.
type AlertHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewAlertHub() *AlertHub {
	return &AlertHub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *AlertHub) Name() string {
	return "websocket"
}

// HandleConnection keeps the connection registered until the client goes
// away. Inbound messages are drained and ignored; this is a broadcast-only
// channel.
func (h *AlertHub) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket alert client connected")

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.Close()
		logger.Info("WebSocket alert client disconnected")
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *AlertHub) Send(_ context.Context, alert notify.Alert) error {
	msg := map[string]interface{}{
		"type":           "alert",
		"category":       alert.Category,
		"title":          alert.Title,
		"location":       alert.Location,
		"distance_km":    alert.DistanceKM,
		"nearest_poi":    alert.NearestPOI,
		"severity":       alert.Severity,
		"summary":        alert.Summary,
		"source":         alert.Source,
		"url":            alert.URL,
		"victims":        alert.Victims,
		"traffic_impact": alert.TrafficImpact,
		"emergency":      alert.Emergency,
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	h.broadcast(msg)
	return nil
}

func (h *AlertHub) SendSummary(_ context.Context, summary notify.RunSummary) error {
	msg := map[string]interface{}{
		"type":           "run_summary",
		"timestamp":      summary.Timestamp,
		"items_analyzed": summary.ItemsAnalyzed,
		"alerts_sent":    summary.AlertsSent,
	}
	h.broadcast(msg)
	return nil
}

func (h *AlertHub) broadcast(msg map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if err := client.WriteJSON(msg); err != nil {
			logger.Warn("Failed to write to WebSocket client", zap.Error(err))
			client.Close()
			delete(h.clients, client)
		}
	}
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/storage/sqlite"
	"github.com/incident-watch/backend/pkg/logger"
)

type EventsHandler struct {
	store *sqlite.Client
}

func NewEventsHandler(store *sqlite.Client) *EventsHandler {
	return &EventsHandler{
		store: store,
	}
}

func (h *EventsHandler) HandleRecentEvents(c *fiber.Ctx) error {
	hours := queryInt(c, "hours", 24)
	limit := queryInt(c, "limit", 50)

	if hours <= 0 || hours > 24*30 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "hours must be between 1 and 720",
		})
	}
	if limit <= 0 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
		})
	}

	events, err := h.store.RecentEvents(c.Context(), hours, limit)
	if err != nil {
		logger.Error("Failed to load recent events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load events",
		})
	}

	return c.JSON(fiber.Map{
		"hours":  hours,
		"count":  len(events),
		"events": events,
	})
}

func (h *EventsHandler) HandleRecentRuns(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 20)
	if limit <= 0 || limit > 200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 200",
		})
	}

	runs, err := h.store.RecentRuns(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to load recent runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load runs",
		})
	}

	return c.JSON(fiber.Map{
		"count": len(runs),
		"runs":  runs,
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

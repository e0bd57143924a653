package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/ai"
	"github.com/incident-watch/backend/internal/api/handlers"
	"github.com/incident-watch/backend/internal/classify"
	"github.com/incident-watch/backend/internal/dedup"
	"github.com/incident-watch/backend/internal/geo"
	"github.com/incident-watch/backend/internal/location"
	"github.com/incident-watch/backend/internal/metrics"
	"github.com/incident-watch/backend/internal/middleware/ratelimit"
	"github.com/incident-watch/backend/internal/notify"
	"github.com/incident-watch/backend/internal/pipeline"
	"github.com/incident-watch/backend/internal/recency"
	"github.com/incident-watch/backend/internal/scraper"
	"github.com/incident-watch/backend/internal/storage/sqlite"
	"github.com/incident-watch/backend/pkg/config"
	appLogger "github.com/incident-watch/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting incident watch monitor")

	metrics.Init()

	// Storage is best-effort: a broken database degrades to alert-only
	// operation instead of stopping the monitor.
	var store pipeline.Store
	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Warn("SQLite unavailable, running without persistence", zap.Error(err))
	} else {
		defer sqliteClient.Close()
		if err := sqliteClient.InitSchema(); err != nil {
			appLogger.Warn("Schema init failed, running without persistence", zap.Error(err))
			sqliteClient = nil
		} else {
			store = sqliteClient
		}
	}

	tracker := buildTracker(cfg)
	if closer, ok := tracker.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var enricher pipeline.Enricher
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		enricher = ai.NewAnalyzer(
			cfg.AI.APIKey,
			cfg.AI.Model,
			cfg.AI.Temperature,
			cfg.AI.MaxTokens,
			cfg.AI.TimeoutSec,
		)
		appLogger.Info("AI enrichment enabled", zap.String("model", cfg.AI.Model))
	} else {
		appLogger.Info("AI enrichment disabled, using keyword classification only")
	}

	geocoder := geo.NewGeocoder(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		cfg.Geocoder.Suffix,
		cfg.Geocoder.TimeoutSec,
		cfg.Monitor.Centroids(),
	)

	classifier := classify.New(cfg.Monitor.Keywords, cfg.Monitor.ExclusionKeywords)
	recencyFilter := recency.NewFilter(cfg.Monitor.MaxAgeHours)
	extractor := location.NewExtractor(cfg.Monitor.SpecificAreas, cfg.Monitor.GenericAreas)
	sourceScraper := scraper.New(15)

	alertHub := handlers.NewAlertHub()
	notifier := notify.NewNotifier(buildSinks(cfg, alertHub)...)

	sources := make([]scraper.Source, 0, len(cfg.Monitor.Sources))
	for _, s := range cfg.Monitor.Sources {
		sources = append(sources, scraper.Source{
			Name: s.Name,
			URL:  s.URL,
			Kind: s.Kind,
		})
	}

	pipe := pipeline.New(
		pipeline.Config{
			RadiusKM:       cfg.Monitor.RadiusKM,
			DedupWindow:    time.Duration(cfg.Monitor.DedupWindowHours) * time.Hour,
			SourcePause:    time.Duration(cfg.Monitor.SourcePauseSec) * time.Second,
			UseAI:          enricher != nil,
			SendRunSummary: cfg.Notify.SendRunSummary,
		},
		classifier,
		recencyFilter,
		extractor,
		enricher,
		geocoder,
		tracker,
		store,
		notifier,
		sourceScraper,
		cfg.Monitor.PointsOfInterest(),
		sources,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runLoop(ctx, pipe, time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute)

	app := buildAPI(cfg, sqliteClient, alertHub)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("API server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Monitor stopped")
}

// buildTracker picks the strongest available dedup backend: Redis when
// configured, the file ledger when a path is set, memory as last resort.
func buildTracker(cfg *config.Config) dedup.Tracker {
	if cfg.Redis.Enabled {
		tracker, err := dedup.NewRedisTracker(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Monitor.DedupWindowHours,
		)
		if err == nil {
			appLogger.Info("Using Redis dedup tracker")
			return tracker
		}
		appLogger.Warn("Redis unavailable, falling back to file ledger", zap.Error(err))
	}

	if cfg.Monitor.ProcessedFile != "" {
		ledger, err := dedup.NewFileLedger(cfg.Monitor.ProcessedFile)
		if err == nil {
			return ledger
		}
		appLogger.Warn("File ledger unavailable, falling back to memory", zap.Error(err))
	}

	return dedup.NewMemoryTracker()
}

func buildSinks(cfg *config.Config, alertHub *handlers.AlertHub) []notify.Sink {
	sinks := []notify.Sink{alertHub}

	if cfg.Notify.Console {
		sinks = append(sinks, notify.NewConsoleSink())
	}

	if cfg.Notify.Telegram && cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		sinks = append(sinks, notify.NewTelegramSink(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
			cfg.Notify.TimeoutSec,
		))
		appLogger.Info("Telegram notifications enabled")
	}

	return sinks
}

func buildAPI(cfg *config.Config, store *sqlite.Client, alertHub *handlers.AlertHub) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: 60,
	})

	api := app.Group("/api/v1", limiter.Middleware())

	if store != nil {
		eventsHandler := handlers.NewEventsHandler(store)
		api.Get("/events", eventsHandler.HandleRecentEvents)
		api.Get("/runs", eventsHandler.HandleRecentRuns)
	}

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/alerts", websocket.New(alertHub.HandleConnection))

	return app
}

func runLoop(ctx context.Context, pipe *pipeline.Pipeline, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	pipe.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pipe.RunOnce(ctx)
		}
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/internal/storage/models"
	"github.com/incident-watch/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT,
		url TEXT,
		source TEXT,
		category TEXT NOT NULL,
		severity INTEGER NOT NULL DEFAULT 5,
		location_text TEXT,
		latitude REAL,
		longitude REAL,
		nearest_poi TEXT,
		poi_address TEXT,
		distance_km REAL,
		matched_corridor TEXT,
		victims INTEGER DEFAULT 0,
		traffic_impact TEXT,
		emergency_services INTEGER DEFAULT 0,
		alert_sent INTEGER DEFAULT 0,
		event_time INTEGER,
		published_time INTEGER,
		detected_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_hash ON events(hash);
	CREATE INDEX IF NOT EXISTS idx_events_url_source ON events(url, source);
	CREATE INDEX IF NOT EXISTS idx_events_detected ON events(detected_at);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);

	CREATE TABLE IF NOT EXISTS monitor_runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		items_analyzed INTEGER DEFAULT 0,
		items_new INTEGER DEFAULT 0,
		items_duplicate INTEGER DEFAULT 0,
		alerts_sent INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON monitor_runs(started_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// IsDuplicate reports whether an event with the same normalized-title hash
// or the same (url, source) pair was detected inside the retention window.
func (c *Client) IsDuplicate(ctx context.Context, hash, url, source string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window).Unix()

	query := `
		SELECT id FROM events
		WHERE (hash = ? OR (url = ? AND url != '' AND source = ?))
		  AND detected_at >= ?
		LIMIT 1
	`

	var id string
	err := c.db.QueryRowContext(ctx, query, hash, url, source, cutoff).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	return true, nil
}

func (c *Client) SaveEvent(ctx context.Context, event *model.EventRecord) error {
	query := `
		INSERT INTO events (
			id, hash, title, summary, url, source,
			category, severity, location_text, latitude, longitude,
			nearest_poi, poi_address, distance_km, matched_corridor,
			victims, traffic_impact, emergency_services,
			alert_sent, event_time, published_time, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	emergency := 0
	if event.EmergencyServices {
		emergency = 1
	}
	alertSent := 0
	if event.AlertSent {
		alertSent = 1
	}

	_, err := c.db.ExecContext(ctx, query,
		event.ID,
		event.Hash,
		event.Title,
		event.Summary,
		event.URL,
		event.Source,
		string(event.Category),
		event.Severity,
		event.LocationText,
		event.Coords.Lat,
		event.Coords.Lon,
		event.NearestPOI,
		event.POIAddress,
		event.DistanceKM,
		event.MatchedCorridor,
		event.Victims,
		string(event.TrafficImpact),
		emergency,
		alertSent,
		event.EventTime.Unix(),
		event.PublishedTime.Unix(),
		event.DetectedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	logger.Debug("Event saved",
		zap.String("event_id", event.ID),
		zap.String("category", string(event.Category)),
	)

	return nil
}

// MarkAlertSent performs the one-way alert_sent transition.
func (c *Client) MarkAlertSent(ctx context.Context, eventID string) error {
	query := `UPDATE events SET alert_sent = 1 WHERE id = ?`

	if _, err := c.db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}

	return nil
}

func (c *Client) RecentEvents(ctx context.Context, hours, limit int) ([]model.EventRecord, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()

	query := `
		SELECT id, hash, title, summary, url, source,
			category, severity, location_text, latitude, longitude,
			nearest_poi, poi_address, distance_km, matched_corridor,
			victims, traffic_impact, emergency_services,
			alert_sent, event_time, published_time, detected_at
		FROM events
		WHERE detected_at >= ?
		ORDER BY detected_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	defer rows.Close()

	var events []model.EventRecord
	for rows.Next() {
		var e model.EventRecord
		var category, trafficImpact string
		var emergency, alertSent int
		var eventTime, publishedTime, detectedAt int64

		err := rows.Scan(
			&e.ID, &e.Hash, &e.Title, &e.Summary, &e.URL, &e.Source,
			&category, &e.Severity, &e.LocationText, &e.Coords.Lat, &e.Coords.Lon,
			&e.NearestPOI, &e.POIAddress, &e.DistanceKM, &e.MatchedCorridor,
			&e.Victims, &trafficImpact, &emergency,
			&alertSent, &eventTime, &publishedTime, &detectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		e.Category = model.Category(category)
		e.TrafficImpact = model.TrafficImpact(trafficImpact)
		e.EmergencyServices = emergency == 1
		e.AlertSent = alertSent == 1
		e.EventTime = time.Unix(eventTime, 0)
		e.PublishedTime = time.Unix(publishedTime, 0)
		e.DetectedAt = time.Unix(detectedAt, 0)
		events = append(events, e)
	}

	return events, rows.Err()
}

func (c *Client) StartRun(ctx context.Context, run *models.MonitorRun) error {
	query := `INSERT INTO monitor_runs (id, started_at, status) VALUES (?, ?, ?)`

	_, err := c.db.ExecContext(ctx, query, run.ID, run.StartedAt.Unix(), models.RunStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	return nil
}

func (c *Client) FinishRun(ctx context.Context, run *models.MonitorRun) error {
	query := `
		UPDATE monitor_runs
		SET finished_at = ?,
			items_analyzed = ?,
			items_new = ?,
			items_duplicate = ?,
			alerts_sent = ?,
			status = ?,
			error_message = ?
		WHERE id = ?
	`

	_, err := c.db.ExecContext(ctx, query,
		time.Now().Unix(),
		run.ItemsAnalyzed,
		run.ItemsNew,
		run.ItemsDuplicate,
		run.AlertsSent,
		run.Status,
		run.ErrorMessage,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

func (c *Client) RecentRuns(ctx context.Context, limit int) ([]models.MonitorRun, error) {
	query := `
		SELECT id, started_at, finished_at, items_analyzed, items_new,
			items_duplicate, alerts_sent, status, error_message
		FROM monitor_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []models.MonitorRun
	for rows.Next() {
		var r models.MonitorRun
		var startedAt int64
		var finishedAt sql.NullInt64
		var errorMessage sql.NullString

		err := rows.Scan(&r.ID, &startedAt, &finishedAt, &r.ItemsAnalyzed,
			&r.ItemsNew, &r.ItemsDuplicate, &r.AlertsSent, &r.Status, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			t := time.Unix(finishedAt.Int64, 0)
			r.FinishedAt = &t
		}
		r.ErrorMessage = errorMessage.String
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

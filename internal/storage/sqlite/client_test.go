package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return client
}

func testEvent() *model.EventRecord {
	now := time.Now()
	return &model.EventRecord{
		ID:            uuid.NewString(),
		Hash:          "abc123",
		Title:         "Choque en avenida Garza Sada",
		Summary:       "Choque múltiple con heridos",
		URL:           "https://example.com/nota",
		Source:        "Milenio",
		Category:      model.CategoryTrafficAccident,
		Severity:      7,
		LocationText:  "Av. Garza Sada",
		Coords:        model.GeoPoint{Lat: 25.6390, Lon: -100.3120},
		NearestPOI:    "Costco Valle Oriente",
		DistanceKM:    1.2,
		TrafficImpact: model.TrafficHigh,
		EventTime:     now,
		PublishedTime: now,
		DetectedAt:    now,
	}
}

func TestSaveAndRecentEvents(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	event := testEvent()
	if err := client.SaveEvent(ctx, event); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	events, err := client.RecentEvents(ctx, 24, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got := events[0]
	if got.ID != event.ID {
		t.Errorf("ID: got %q, want %q", got.ID, event.ID)
	}
	if got.Category != model.CategoryTrafficAccident {
		t.Errorf("Category: got %q", got.Category)
	}
	if got.TrafficImpact != model.TrafficHigh {
		t.Errorf("TrafficImpact: got %q", got.TrafficImpact)
	}
	if got.Coords.Lat != event.Coords.Lat || got.Coords.Lon != event.Coords.Lon {
		t.Errorf("Coords: got %+v", got.Coords)
	}
	if got.AlertSent {
		t.Error("AlertSent should start false")
	}
}

func TestIsDuplicate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	event := testEvent()
	if err := client.SaveEvent(ctx, event); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	tests := []struct {
		name   string
		hash   string
		url    string
		source string
		want   bool
	}{
		{"same hash", event.Hash, "", "", true},
		{"same url and source", "other-hash", event.URL, event.Source, true},
		{"same url different source", "other-hash", event.URL, "INFO 7", false},
		{"unrelated", "other-hash", "https://example.com/otra", "INFO 7", false},
		{"empty url never keys", "other-hash", "", event.Source, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.IsDuplicate(ctx, tt.hash, tt.url, tt.source, 24*time.Hour)
			if err != nil {
				t.Fatalf("IsDuplicate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDuplicate_WindowExpires(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	event := testEvent()
	event.DetectedAt = time.Now().Add(-48 * time.Hour)
	if err := client.SaveEvent(ctx, event); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	dup, err := client.IsDuplicate(ctx, event.Hash, event.URL, event.Source, 24*time.Hour)
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Error("event outside the window must not count as duplicate")
	}
}

func TestMarkAlertSent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	event := testEvent()
	if err := client.SaveEvent(ctx, event); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	if err := client.MarkAlertSent(ctx, event.ID); err != nil {
		t.Fatalf("MarkAlertSent: %v", err)
	}

	events, err := client.RecentEvents(ctx, 24, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 || !events[0].AlertSent {
		t.Error("AlertSent should be true after marking")
	}
}

func TestRunLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	run := &models.MonitorRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Status:    models.RunStatusInProgress,
	}
	if err := client.StartRun(ctx, run); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	run.ItemsAnalyzed = 40
	run.ItemsNew = 35
	run.ItemsDuplicate = 5
	run.AlertsSent = 2
	run.Status = models.RunStatusCompleted
	if err := client.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := client.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.Status != models.RunStatusCompleted {
		t.Errorf("Status: got %q", got.Status)
	}
	if got.ItemsAnalyzed != 40 || got.ItemsDuplicate != 5 || got.AlertsSent != 2 {
		t.Errorf("counters: got %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt should be set after FinishRun")
	}
}

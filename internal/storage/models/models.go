package models

import "time"

// MonitorRun records one execution of the monitor loop.
type MonitorRun struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	ItemsAnalyzed  int        `json:"items_analyzed"`
	ItemsNew       int        `json:"items_new"`
	ItemsDuplicate int        `json:"items_duplicate"`
	AlertsSent     int        `json:"alerts_sent"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

const (
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

package notify

import (
	"context"
	"time"
)

// Event describes the outcome of one recording upload.
type Event struct {
	SessionID        string    `json:"session_id"`
	Channel          string    `json:"channel"`
	Stage            string    `json:"stage"`
	Filename         string    `json:"filename,omitempty"`
	RemoteURL        string    `json:"remote_url,omitempty"`
	TimelineRecordID string    `json:"timeline_record_id,omitempty"`
	DurationSeconds  float64   `json:"duration_seconds"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Error            string    `json:"error,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

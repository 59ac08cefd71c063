package models

import "time"

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Per-media outcomes.
const (
	OutcomeUpdated        = "updated"
	OutcomeSkippedMime    = "skipped_mime"
	OutcomeSkippedNoField = "skipped_no_fields"
)

// Run represents one dimension update pass over a node's media
type Run struct {
	ID        string        `json:"id"`
	NodeID    string        `json:"node_id"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Results   []MediaResult `json:"results"`
	CreatedAt time.Time     `json:"created_at"`
}

// MediaResult records what happened to a single media entity
type MediaResult struct {
	MediaID  string `json:"media_id"`
	MediaUse string `json:"media_use"`
	MimeType string `json:"mime_type,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Outcome  string `json:"outcome"`
}

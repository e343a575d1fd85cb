package ledger

import (
	"time"
)

// Entry is one fully distributed video. Entries are append-only: once written
// they are never mutated or deleted by the running process.
type Entry struct {
	SourceURL    string    `json:"source_url"`
	Title        string    `json:"title"`
	Caption      string    `json:"caption"`
	Duration     int       `json:"duration"` // seconds
	DiscoveredAt time.Time `json:"discovered_at"`
	PostedTo     []Outcome `json:"posted_to"`
}

// Outcome is the per-destination result recorded with an entry.
type Outcome struct {
	DestinationID   string `json:"destination_id"`
	DestinationName string `json:"destination_name"`
	Status          string `json:"status"` // success, failed, error
	PostID          string `json:"post_id,omitempty"`
	PostURL         string `json:"url,omitempty"`
	Error           string `json:"error,omitempty"`
}

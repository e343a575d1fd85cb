package source

import (
	"context"
	"time"
)

// Candidate is a discovered video that is not yet known to be posted. It
// lives for a single pipeline cycle; only a successful distribution promotes
// it into a ledger entry.
type Candidate struct {
	SourceURL    string
	Title        string
	Description  string
	Duration     int // seconds
	Keywords     []string
	MediaURL     string
	DiscoveredAt time.Time
}

// Adapter produces candidate videos from a source. Discover returns the
// source URLs currently listed; FetchMetadata resolves one of them into a
// full candidate.
type Adapter interface {
	Discover(ctx context.Context) ([]string, error)
	FetchMetadata(ctx context.Context, sourceURL string) (*Candidate, error)
}

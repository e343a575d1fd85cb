package distributor

import (
	"context"
	"time"

	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Outcome is the result of one publish attempt against one destination.
type Outcome struct {
	DestinationID   string
	DestinationName string
	Status          Status
	PostID          string
	PostURL         string
	Reason          string
}

// PublisherInterface is the destination publish protocol consumed by the
// distributor.
type PublisherInterface interface {
	ValidateToken(ctx context.Context, dest destinations.Destination) bool
	UploadVideo(ctx context.Context, dest destinations.Destination, videoPath, caption string) (string, error)
	UploadReel(ctx context.Context, dest destinations.Destination, videoPath, caption string) (string, error)
}

// RegistryInterface loads the current destination list.
type RegistryInterface interface {
	Load() ([]destinations.Destination, error)
}

// DelayFunc is the inter-destination pacing strategy. Tests inject a no-op
// so fan-out behavior is checked without real timers.
type DelayFunc func(ctx context.Context, d time.Duration)

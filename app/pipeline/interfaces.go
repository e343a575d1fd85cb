package pipeline

import (
	"context"

	"github.com/mudikgratis2025/detik-syndicator/app/distributor"
	"github.com/mudikgratis2025/detik-syndicator/app/ledger"
)

// AcquirerInterface downloads a media URL into local storage.
type AcquirerInterface interface {
	Run(ctx context.Context, mediaURL string) (string, error)
}

// TransformerInterface derives a reel-formatted file from a local video.
type TransformerInterface interface {
	Run(ctx context.Context, inputPath string) (string, error)
}

// DistributorInterface fans a prepared video out to all destinations.
type DistributorInterface interface {
	Run(ctx context.Context, videoPath, caption string, isReel bool) ([]distributor.Outcome, error)
}

// LedgerInterface is the durable at-most-once record consumed by the
// controller.
type LedgerInterface interface {
	Contains(sourceURL string) bool
	Record(entry ledger.Entry) error
}

package distributor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
	"github.com/mudikgratis2025/detik-syndicator/app/publisher"
)

const reasonInvalidToken = "invalid access token"

// Distributor fans one prepared video out to every configured destination in
// list order. Destinations are independent: one failure never aborts the
// rest, and the caller always gets the full outcome list.
type Distributor struct {
	registry    RegistryInterface
	publisher   PublisherInterface
	uploadDelay time.Duration
	sleep       DelayFunc
}

// NewDistributor creates a distributor. A nil sleep uses a context-aware
// real delay.
func NewDistributor(registry RegistryInterface, pub PublisherInterface, uploadDelay time.Duration, sleep DelayFunc) *Distributor {
	if sleep == nil {
		sleep = sleepWithContext
	}
	return &Distributor{
		registry:    registry,
		publisher:   pub,
		uploadDelay: uploadDelay,
		sleep:       sleep,
	}
}

// Run reloads the destination list and publishes the video to each
// destination sequentially, pausing between destinations so synchronous
// per-destination rate limits are not tripped. The delay is skipped after the
// last destination and after a failed credential preflight.
func (d *Distributor) Run(ctx context.Context, videoPath, caption string, isReel bool) ([]Outcome, error) {
	pages, err := d.registry.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load destinations: %w", err)
	}

	outcomes := make([]Outcome, 0, len(pages))
	for i, page := range pages {
		outcome := d.publishTo(ctx, page, videoPath, caption, isReel)
		outcomes = append(outcomes, outcome)

		switch outcome.Status {
		case StatusSuccess:
			slog.Info("Published to destination", "destination", page.ID, "name", page.Name, "post_id", outcome.PostID)
		default:
			slog.Warn("Failed to publish to destination", "destination", page.ID, "name", page.Name, "status", string(outcome.Status), "reason", outcome.Reason)
		}

		if outcome.Reason == reasonInvalidToken {
			continue
		}
		if i < len(pages)-1 {
			d.sleep(ctx, d.uploadDelay)
		}
	}

	return outcomes, nil
}

func (d *Distributor) publishTo(ctx context.Context, page destinations.Destination, videoPath, caption string, isReel bool) Outcome {
	outcome := Outcome{
		DestinationID:   page.ID,
		DestinationName: page.Name,
	}

	if !d.publisher.ValidateToken(ctx, page) {
		outcome.Status = StatusFailed
		outcome.Reason = reasonInvalidToken
		return outcome
	}

	var postID string
	var err error
	if isReel {
		postID, err = d.publisher.UploadReel(ctx, page, videoPath, caption)
	} else {
		postID, err = d.publisher.UploadVideo(ctx, page, videoPath, caption)
	}

	if err != nil {
		outcome.Status = classify(err)
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.PostID = postID
	outcome.PostURL = publisher.PostURL(postID)
	return outcome
}

// classify separates protocol rejections (the destination said no) from
// unexpected faults (transport errors, unreadable files).
func classify(err error) Status {
	var sessionErr *publisher.SessionError
	var uploadErr *publisher.UploadError
	var publishErr *publisher.PublishError
	if errors.As(err, &sessionErr) || errors.As(err, &uploadErr) || errors.As(err, &publishErr) {
		return StatusFailed
	}
	return StatusError
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

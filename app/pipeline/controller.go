package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mudikgratis2025/detik-syndicator/app/caption"
	"github.com/mudikgratis2025/detik-syndicator/app/distributor"
	"github.com/mudikgratis2025/detik-syndicator/app/ledger"
	"github.com/mudikgratis2025/detik-syndicator/app/source"
)

type Options struct {
	PollInterval   time.Duration
	CooldownDelay  time.Duration
	ReelMaxSeconds int
	DownloadDir    string
}

// Controller owns the pipeline state: it discovers candidates, skips the
// ones already in the ledger, and drives each new one through
// acquire/transform/distribute/record. One worker runs everything
// sequentially; destinations and the source are rate-limited external
// services, so there is nothing to win by processing items in parallel.
type Controller struct {
	source      source.Adapter
	acquirer    AcquirerInterface
	transformer TransformerInterface
	distributor DistributorInterface
	ledger      LedgerInterface
	caption     caption.Policy
	opts        Options
}

func NewController(src source.Adapter, acquirer AcquirerInterface, transformer TransformerInterface,
	dist DistributorInterface, led LedgerInterface, captionPolicy caption.Policy, opts Options) *Controller {
	if captionPolicy == nil {
		captionPolicy = caption.Default
	}
	return &Controller{
		source:      src,
		acquirer:    acquirer,
		transformer: transformer,
		distributor: dist,
		ledger:      led,
		caption:     captionPolicy,
		opts:        opts,
	}
}

// Run executes discovery cycles until the context is cancelled. A failed
// cycle body (discovery error and the like) is logged and followed by the
// cooldown delay instead of the regular poll interval; it never terminates
// the process.
func (c *Controller) Run(ctx context.Context) {
	if err := c.sweepDownloadDir(); err != nil {
		slog.Warn("Failed to sweep download directory", "dir", c.opts.DownloadDir, "error", err)
	}

	for {
		log := slog.With("cycle", uuid.NewString()[:8])
		log.Info("Checking for new videos")

		if err := c.RunCycle(ctx, log); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Cycle failed", "error", err, "retry_in", c.opts.CooldownDelay.String())
			if !sleepWithContext(ctx, c.opts.CooldownDelay) {
				return
			}
			continue
		}

		if !sleepWithContext(ctx, c.opts.PollInterval) {
			return
		}
	}
}

// RunCycle performs one discovery pass. Item-level failures are absorbed
// here; only cycle-level failures (the source itself erroring) are returned.
func (c *Controller) RunCycle(ctx context.Context, log *slog.Logger) error {
	links, err := c.source.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	// A locator appearing twice in one scrape is processed once, in a
	// deterministic order.
	seen := make(map[string]bool, len(links))
	candidates := make([]string, 0, len(links))
	for _, link := range links {
		if !seen[link] {
			seen[link] = true
			candidates = append(candidates, link)
		}
	}
	sort.Strings(candidates)

	skipped := 0
	posted := 0
	abandoned := 0

	for _, link := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if c.ledger.Contains(link) {
			log.Debug("Already posted, skipping", "url", link)
			skipped++
			continue
		}

		if err := c.processCandidate(ctx, log, link); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Candidate abandoned", "url", link, "error", err)
			abandoned++
			continue
		}
		posted++
	}

	log.Info("Cycle completed",
		"discovered", len(candidates),
		"skipped", skipped,
		"posted", posted,
		"abandoned", abandoned)

	return nil
}

// processCandidate drives one video through the per-item states. Any failure
// abandons this candidate only; since nothing is ledgered until at least one
// destination succeeded, an abandoned video is rediscovered and retried on a
// later cycle.
func (c *Controller) processCandidate(ctx context.Context, log *slog.Logger, sourceURL string) error {
	candidate, err := c.source.FetchMetadata(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}

	log.Info("Processing new video", "url", sourceURL, "title", candidate.Title, "duration", candidate.Duration)

	videoPath, err := c.acquirer.Run(ctx, candidate.MediaURL)
	if err != nil {
		return fmt.Errorf("failed to download video: %w", err)
	}

	isReel := candidate.Duration <= c.opts.ReelMaxSeconds
	if isReel {
		reelPath, terr := c.transformer.Run(ctx, videoPath)
		// The pre-transform file is removed no matter what, so a failed
		// conversion leaves no orphaned intermediate behind.
		c.removeAsset(log, videoPath)
		if terr != nil {
			return fmt.Errorf("failed to convert to reel format: %w", terr)
		}
		videoPath = reelPath
	}

	captionText := c.caption(*candidate)

	outcomes, err := c.distributor.Run(ctx, videoPath, captionText, isReel)
	c.removeAsset(log, videoPath)
	if err != nil {
		return fmt.Errorf("distribution failed: %w", err)
	}

	successes := 0
	for _, outcome := range outcomes {
		if outcome.Status == distributor.StatusSuccess {
			successes++
		}
	}

	if successes == 0 {
		return fmt.Errorf("no destination accepted the video (%d attempted)", len(outcomes))
	}

	entry := buildEntry(candidate, captionText, outcomes)
	if err := c.ledger.Record(entry); err != nil {
		// The entry stays in memory, so this process will not repost; only a
		// restart can. Keep going rather than losing the whole pipeline.
		log.Warn("Ledger persistence failed, continuing with in-memory record", "url", sourceURL, "error", err)
	}

	log.Info("Video posted", "url", sourceURL, "successes", successes, "destinations", len(outcomes))

	return nil
}

func buildEntry(candidate *source.Candidate, captionText string, outcomes []distributor.Outcome) ledger.Entry {
	posted := make([]ledger.Outcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		posted = append(posted, ledger.Outcome{
			DestinationID:   outcome.DestinationID,
			DestinationName: outcome.DestinationName,
			Status:          string(outcome.Status),
			PostID:          outcome.PostID,
			PostURL:         outcome.PostURL,
			Error:           outcome.Reason,
		})
	}

	return ledger.Entry{
		SourceURL:    candidate.SourceURL,
		Title:        candidate.Title,
		Caption:      captionText,
		Duration:     candidate.Duration,
		DiscoveredAt: candidate.DiscoveredAt,
		PostedTo:     posted,
	}
}

func (c *Controller) removeAsset(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove video file", "path", path, "error", err)
	}
}

// sweepDownloadDir clears files left behind by a previous run that crashed
// mid-item. Those items were never ledgered and will be rediscovered.
func (c *Controller) sweepDownloadDir() error {
	if err := os.MkdirAll(c.opts.DownloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	entries, err := os.ReadDir(c.opts.DownloadDir)
	if err != nil {
		return fmt.Errorf("failed to read download directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(c.opts.DownloadDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove leftover file", "path", path, "error", err)
		}
	}

	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

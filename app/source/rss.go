package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

var _ Adapter = (*RSSAdapter)(nil)

// RSSAdapter reads candidates from an RSS/Atom feed instead of scraping
// HTML, for sources that publish their video listing as a feed. The item
// enclosure is used as the media URL.
type RSSAdapter struct {
	httpClient   *http.Client
	feedURL      string
	userAgent    string
	gofeedParser *gofeed.Parser
}

func NewRSSAdapter(httpClient *http.Client, feedURL, userAgent string) *RSSAdapter {
	return &RSSAdapter{
		httpClient:   httpClient,
		feedURL:      feedURL,
		userAgent:    userAgent,
		gofeedParser: gofeed.NewParser(),
	}
}

func (a *RSSAdapter) Discover(ctx context.Context) ([]string, error) {
	feed, err := a.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}

	return links, nil
}

func (a *RSSAdapter) FetchMetadata(ctx context.Context, sourceURL string) (*Candidate, error) {
	feed, err := a.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range feed.Items {
		if item.Link != sourceURL {
			continue
		}
		return a.normalizeItem(item, sourceURL)
	}

	return nil, fmt.Errorf("item %s not found in feed", sourceURL)
}

func (a *RSSAdapter) fetchFeed(ctx context.Context) (*gofeed.Feed, error) {
	data, err := fetch(ctx, a.httpClient, a.feedURL, a.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := a.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return feed, nil
}

func (a *RSSAdapter) normalizeItem(item *gofeed.Item, sourceURL string) (*Candidate, error) {
	var mediaURL string
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		mediaURL = item.Enclosures[0].URL
	}
	if mediaURL == "" {
		return nil, fmt.Errorf("item %s has no enclosure media URL", sourceURL)
	}

	duration := 0
	if item.ITunesExt != nil {
		duration = parseDuration(item.ITunesExt.Duration)
	}

	return &Candidate{
		SourceURL:    sourceURL,
		Title:        item.Title,
		Description:  item.Description,
		Duration:     duration,
		Keywords:     item.Categories,
		MediaURL:     mediaURL,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}

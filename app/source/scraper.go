package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var _ Adapter = (*Scraper)(nil)

// Scraper reads the Detik video listing page and individual video pages.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewScraper(httpClient *http.Client, baseURL, userAgent string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Discover scrapes the listing page for video article links. The scrape may
// return duplicates across cycles (or none at all on layout changes); the
// pipeline's ledger absorbs redelivery.
func (s *Scraper) Discover(ctx context.Context) ([]string, error) {
	data, err := fetch(ctx, s.httpClient, s.baseURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	seen := make(map[string]bool)
	doc.Find("article.list-content__item a.block-link").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.Contains(strings.ToLower(href), "video") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[base.ResolveReference(ref).String()] = true
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links, nil
}

// FetchMetadata scrapes one video page into a candidate. A page without an
// extractable media URL is an error: there is nothing to download.
func (s *Scraper) FetchMetadata(ctx context.Context, sourceURL string) (*Candidate, error) {
	data, err := fetch(ctx, s.httpClient, sourceURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse video page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1.detail__title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = "No Title"
	}

	description := strings.TrimSpace(doc.Find("div.detail__body-text").First().Text())

	duration := parseDuration(strings.TrimSpace(doc.Find("div.media__icon--top-right").First().Text()))

	var keywords []string
	if content, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, keyword := range strings.Split(content, ",") {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
	}

	mediaURL := extractMediaURL(string(data))
	if mediaURL == "" {
		return nil, fmt.Errorf("no media URL found on %s", sourceURL)
	}

	return &Candidate{
		SourceURL:    sourceURL,
		Title:        title,
		Description:  description,
		Duration:     duration,
		Keywords:     keywords,
		MediaURL:     mediaURL,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}

// parseDuration understands the two forms Detik uses: "NN detik" and "MM:SS".
func parseDuration(text string) int {
	if strings.Contains(text, "detik") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(text, "detik", "")))
		if err != nil {
			return 0
		}
		return n
	}

	if strings.Contains(text, ":") {
		parts := strings.SplitN(text, ":", 2)
		minutes, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		seconds, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return 0
		}
		return minutes*60 + seconds
	}

	// Bare number of seconds (itunes:duration style)
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}

	return 0
}

var (
	jsonLDPattern    = regexp.MustCompile(`(?s)<script type="application/ld\+json">(.*?)</script>`)
	mediaURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)videoUrl\s*:\s*["'](.*?\.m3u8[^"']*)["']`),
		regexp.MustCompile(`(?i)<meta[^>]*content=["'](https?://[^"']*\.mp4[^"']*)["']`),
		regexp.MustCompile(`(?i)src:\s*["'](https?://[^"']*\.mp4[^"']*)["']`),
	}
)

// extractMediaURL pulls the playable media URL out of a video page. JSON-LD
// VideoObject metadata is preferred; known inline-player patterns are the
// fallback.
func extractMediaURL(html string) string {
	if m := jsonLDPattern.FindStringSubmatch(html); m != nil {
		var obj struct {
			Type       string `json:"@type"`
			ContentURL string `json:"contentUrl"`
		}
		if err := json.Unmarshal([]byte(m[1]), &obj); err == nil {
			if obj.Type == "VideoObject" && obj.ContentURL != "" {
				return obj.ContentURL
			}
		}
	}

	for _, pattern := range mediaURLPatterns {
		if m := pattern.FindStringSubmatch(html); m != nil {
			mediaURL := m[1]
			if strings.HasPrefix(mediaURL, "//") {
				mediaURL = "https:" + mediaURL
			}
			return mediaURL
		}
	}

	return ""
}

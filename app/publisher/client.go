package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
)

const apiVersion = "v20.0"

// Client speaks the Facebook Graph video protocols: a single-request upload
// for regular videos and the three-phase start/transfer/finish handshake for
// reels. The base URLs are fields so tests can point the client at a local
// server.
type Client struct {
	httpClient *http.Client
	userAgent  string

	GraphURL      string
	GraphVideoURL string
	UploadURL     string
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient:    httpClient,
		userAgent:     userAgent,
		GraphURL:      "https://graph.facebook.com",
		GraphVideoURL: "https://graph-video.facebook.com",
		UploadURL:     "https://rupload.facebook.com",
	}
}

// PostURL returns the public URL of a published post.
func PostURL(postID string) string {
	return "https://facebook.com/" + postID
}

// ValidateToken is the cheap preflight run before any upload: a GET against
// the page's reels edge that only succeeds with a usable access token.
func (c *Client) ValidateToken(ctx context.Context, dest destinations.Destination) bool {
	endpoint := fmt.Sprintf("%s/%s/%s/video_reels", c.GraphURL, apiVersion, dest.ID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		slog.Warn("Token validation request failed", "destination", dest.ID, "error", err)
		return false
	}

	q := req.URL.Query()
	q.Set("since", "today")
	q.Set("access_token", dest.AccessToken)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Token validation failed", "destination", dest.ID, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// UploadVideo publishes a regular video: one synchronous multipart request
// carrying the asset bytes, caption and publish flag.
func (c *Client) UploadVideo(ctx context.Context, dest destinations.Destination, videoPath, caption string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("source", filepath.Base(videoPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	endpoint := fmt.Sprintf("%s/%s/%s/videos", c.GraphVideoURL, apiVersion, dest.ID)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	q := req.URL.Query()
	q.Set("access_token", dest.AccessToken)
	q.Set("description", caption)
	q.Set("published", "true")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &PublishError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return "", &PublishError{StatusCode: resp.StatusCode, Body: "no post ID in response"}
	}

	return result.ID, nil
}

// UploadReel runs the three-phase reel handshake. Failure at any phase aborts
// the remaining phases and surfaces that phase's typed error.
func (c *Client) UploadReel(ctx context.Context, dest destinations.Destination, videoPath, caption string) (string, error) {
	initEndpoint := fmt.Sprintf("%s/%s/%s/video_reels", c.GraphURL, apiVersion, dest.ID)

	// Phase 1: request an upload session
	videoID, err := c.startReelSession(ctx, initEndpoint, dest)
	if err != nil {
		return "", err
	}

	// Phase 2: stream the asset bytes to the session endpoint
	if err := c.transferReelBytes(ctx, dest, videoID, videoPath); err != nil {
		return "", err
	}

	// Phase 3: publish the session
	if err := c.finishReel(ctx, initEndpoint, dest, videoID, caption); err != nil {
		return "", err
	}

	return videoID, nil
}

func (c *Client) startReelSession(ctx context.Context, endpoint string, dest destinations.Destination) (string, error) {
	form := url.Values{}
	form.Set("upload_phase", "start")
	form.Set("access_token", dest.AccessToken)

	resp, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		return "", &SessionError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SessionError{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, body)}
	}

	var result struct {
		VideoID string `json:"video_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.VideoID == "" {
		return "", &SessionError{Reason: "no video ID in response"}
	}

	return result.VideoID, nil
}

func (c *Client) transferReelBytes(ctx context.Context, dest destinations.Destination, videoID, videoPath string) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat video file: %w", err)
	}

	endpoint := fmt.Sprintf("%s/video-upload/%s/%s", c.UploadURL, apiVersion, videoID)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, file)
	if err != nil {
		return fmt.Errorf("failed to create transfer request: %w", err)
	}

	req.Header.Set("Authorization", "OAuth "+dest.AccessToken)
	req.Header.Set("offset", "0")
	req.Header.Set("file_size", strconv.FormatInt(info.Size(), 10))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("User-Agent", c.userAgent)
	req.ContentLength = info.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}

func (c *Client) finishReel(ctx context.Context, endpoint string, dest destinations.Destination, videoID, caption string) error {
	form := url.Values{}
	form.Set("access_token", dest.AccessToken)
	form.Set("video_id", videoID)
	form.Set("upload_phase", "finish")
	form.Set("description", caption)
	form.Set("video_state", "PUBLISHED")
	form.Set("container_type", "REELS")
	form.Set("share_to_feed", "true")
	form.Set("allow_share_to_stories", "true")
	form.Set("crossposting_original_video_id", videoID)

	resp, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		return &PublishError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PublishError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

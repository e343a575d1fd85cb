package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Acquirer downloads a media URL into the download directory using yt-dlp.
type Acquirer struct {
	downloadDir string
}

func NewAcquirer(downloadDir string) *Acquirer {
	return &Acquirer{downloadDir: downloadDir}
}

// Run downloads the video and returns the local file path. yt-dlp prints the
// final path after any merge/move, so the caller does not have to guess the
// extension.
func (a *Acquirer) Run(ctx context.Context, mediaURL string) (string, error) {
	args := acquireArgs(mediaURL, a.downloadDir)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, tail(stderr.String()))
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", fmt.Errorf("yt-dlp reported no output file for %s", mediaURL)
	}

	return path, nil
}

// acquireArgs builds the yt-dlp argument slice. Split from Run so command
// construction is testable without invoking yt-dlp.
func acquireArgs(mediaURL, downloadDir string) []string {
	return []string{
		"yt-dlp",
		"--quiet",
		"--no-warnings",
		"--format", "bestvideo[height<=1080]+bestaudio/best",
		"--merge-output-format", "mp4",
		"--output", filepath.Join(downloadDir, "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
		mediaURL,
	}
}

// tail returns the last few lines of tool output for error messages.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

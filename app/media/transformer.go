package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Transformer reformats a downloaded video into the 720x1280 portrait layout
// required for reels, padding rather than cropping to preserve the frame.
type Transformer struct {
	downloadDir string
}

func NewTransformer(downloadDir string) *Transformer {
	return &Transformer{downloadDir: downloadDir}
}

// Run converts inputPath and returns the path of the derived file. The input
// file is left in place; the caller owns its lifecycle.
func (t *Transformer) Run(ctx context.Context, inputPath string) (string, error) {
	outputPath := filepath.Join(t.downloadDir, "reel_"+filepath.Base(inputPath))

	args := transformArgs(inputPath, outputPath)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %w: %s", err, tail(stderr.String()))
	}

	return outputPath, nil
}

// transformArgs builds the ffmpeg argument slice for the reel conversion.
func transformArgs(inputPath, outputPath string) []string {
	return []string{
		"ffmpeg",
		"-hide_banner",
		"-nostdin",
		"-y",
		"-loglevel", "error",
		"-i", inputPath,
		"-vf", "scale=720:1280:force_original_aspect_ratio=decrease,pad=720:1280:(ow-iw)/2:(oh-ih)/2,setsar=1",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-f", "mp4",
		outputPath,
	}
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"accent-detector/infrastructure/command"
)

// YtDlpResolver uses the yt-dlp binary to find the direct media URL of a video page
type YtDlpResolver struct {
	binaryPath string
	runner     command.Runner
	timeout    time.Duration
}

// NewYtDlpResolver creates a new resolver. An empty binaryPath means yt-dlp on PATH.
func NewYtDlpResolver(binaryPath string, runner command.Runner) *YtDlpResolver {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if runner == nil {
		runner = &command.ExecRunner{}
	}
	return &YtDlpResolver{
		binaryPath: binaryPath,
		runner:     runner,
		timeout:    2 * time.Minute,
	}
}

// ResolveMediaURL fetches the direct download link using yt-dlp --get-url
func (r *YtDlpResolver) ResolveMediaURL(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// -f b: best single file with both audio and video
	out, err := r.runner.Output(ctx, r.binaryPath, "-f", "b", "--get-url", "--no-warnings", pageURL)
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	urlStr := strings.TrimSpace(string(out))
	if urlStr == "" {
		return "", errors.New("yt-dlp returned empty URL")
	}

	// yt-dlp may print one URL per selected stream
	first, _, _ := strings.Cut(urlStr, "\n")
	return strings.TrimSpace(first), nil
}

// Ensure YtDlpResolver implements PageResolver
var _ PageResolver = (*YtDlpResolver)(nil)

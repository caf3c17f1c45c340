package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"accent-detector/domain/media"
	"accent-detector/infrastructure/command"
)

// maxOutputBytes bounds the ffmpeg output kept in an ExtractionError
const maxOutputBytes = 4096

// Extractor implements media.AudioExtractor using ffmpeg
type Extractor struct {
	ffmpegPath string
	runner     command.Runner
	timeout    time.Duration
	format     media.AudioFormat
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner command.Runner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// WithTimeout bounds each ffmpeg invocation. Zero disables the bound.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// NewExtractor creates a new FFmpeg-based audio extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		runner:     &command.ExecRunner{},
		format:     media.NormalizedFormat,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Args returns the ffmpeg arguments used to extract audioPath from videoPath
func (e *Extractor) Args(videoPath, audioPath string) []string {
	return []string{
		"-y", // Overwrite output file if it exists
		"-i", videoPath,
		"-vn",                  // No video
		"-acodec", "pcm_s16le", // Signed 16-bit little-endian PCM
		"-ar", strconv.Itoa(e.format.SampleRate),
		"-ac", strconv.Itoa(e.format.Channels),
		audioPath,
	}
}

// Extract implements media.AudioExtractor
func (e *Extractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	out, err := e.runner.CombinedOutput(ctx, e.ffmpegPath, e.Args(videoPath, audioPath)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return &media.ExtractionError{
			ExitCode: command.ExitCode(err),
			Output:   tail(out, maxOutputBytes),
			Err:      err,
		}
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// tail keeps the last n bytes of ffmpeg output, where the actual error is printed
func tail(out []byte, n int) string {
	if len(out) <= n {
		return string(out)
	}
	return "..." + string(out[len(out)-n:])
}

// Ensure Extractor implements media.AudioExtractor
var _ media.AudioExtractor = (*Extractor)(nil)

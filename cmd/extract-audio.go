package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"accent-detector/application/analysis"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	extractSource     string
	extractOutputName string
	extractOutputPath string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract normalized audio from a video",
	Long: `Fetch a video from a URL or local path and extract its audio track as a
mono 16 kHz 16-bit PCM WAV file.

Without --output the WAV stays in its run directory under the configured
work directory. With --output it is copied to that path and the run
directory is removed.

Example:
  accent-detector extract-audio --source https://example.com/talk.mp4
  accent-detector extract-audio --source ./interview.mkv --output ./interview.wav`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSource, "source", "", "Video URL or local path (required)")
	extractAudioCmd.Flags().StringVar(&extractOutputName, "output-name", "", "File name of the WAV inside the run directory (default audio.wav)")
	extractAudioCmd.Flags().StringVar(&extractOutputPath, "output", "", "Copy the WAV to this path and remove the run directory")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	extractor := newExtractor(cfg)
	return RunExtractAudioWithDependencies(
		cmd.Context(),
		newPipeline(cfg, extractor, logger),
		extractor,
		extractSource,
		extractOutputName,
		extractOutputPath,
		os.Stdout,
	)
}

// InstallVerifier checks that an external tool can be run
type InstallVerifier interface {
	VerifyInstalled(ctx context.Context) error
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing).
// verifier may be nil to skip the ffmpeg check.
func RunExtractAudioWithDependencies(
	ctx context.Context,
	processor analysis.Processor,
	verifier InstallVerifier,
	source string,
	outputName string,
	destination string,
	output OutputWriter,
) error {
	ctx = contextOrBackground(ctx)

	if verifier != nil {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifier.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	fmt.Fprintf(output, "Extracting audio from %s...\n", source)

	artifact, err := processor.Process(ctx, source, outputName)
	if err != nil {
		return err
	}

	if destination == "" {
		fmt.Fprintf(output, "Successfully created: %s (%d Hz, %d ch, %d-bit, %s)\n",
			artifact.AudioPath,
			artifact.Format.SampleRate,
			artifact.Format.Channels,
			artifact.Format.BitsPerSample,
			roundDuration(artifact.Duration),
		)
		return nil
	}

	defer artifact.Release()

	size, err := copyFile(artifact.AudioPath, destination)
	if err != nil {
		return fmt.Errorf("failed to copy audio to %s: %w", destination, err)
	}

	fmt.Fprintf(output, "Successfully created: %s (%s)\n", destination, humanize.Bytes(uint64(size)))
	return nil
}

func roundDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(dst)
		if copyErr == nil {
			copyErr = closeErr
		}
		return 0, copyErr
	}
	return n, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"accent-detector/infrastructure/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "accent-detector",
	Short: "Detect the English accent of the speaker in a video",
	Long: `accent-detector extracts the audio track of a video and classifies the
speaker's English accent with a pretrained model:

  - Fetch a video from a URL or a local file
  - Extract mono 16 kHz PCM audio with ffmpeg
  - Classify the accent and report the confidence
  - Serve a web UI for uploads and links

Example:
  accent-detector classify --source https://example.com/interview.mp4
  accent-detector serve`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, cfgErr = config.LoadOrDefault(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

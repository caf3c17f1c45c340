package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"accent-detector/infrastructure/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI",
	Long: `Start the web UI where a video can be uploaded (mp4, mkv) or linked,
and its speaker's accent detected.

Example:
  accent-detector serve
  accent-detector serve --addr 127.0.0.1:9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	service, extractor, err := newAnalysis(cfg, logger)
	if err != nil {
		return err
	}
	// A missing ffmpeg is reported at startup rather than on the first request
	if err := extractor.VerifyInstalled(cmd.Context()); err != nil {
		logger.Warn("ffmpeg is not available", zap.Error(err))
	}

	uploadDir := filepath.Join(cfg.Paths.WorkDirectory, "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	server, err := web.NewServer(service, logger, cfg.Server.MaxUploadMB<<20, uploadDir)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.ListenAddress
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr)
}

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"accent-detector/application/analysis"
	"accent-detector/application/pipeline"
	"accent-detector/domain/accent"
	"accent-detector/infrastructure/classifier"
	"accent-detector/infrastructure/command"
	"accent-detector/infrastructure/config"
	"accent-detector/infrastructure/fetch"
	"accent-detector/infrastructure/ffmpeg"
	"accent-detector/infrastructure/filesystem"
	"accent-detector/infrastructure/logging"

	"go.uber.org/zap"
)

// newLogger builds the production logger from configuration
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging, os.Stderr)
}

// newExtractor builds the ffmpeg extractor from configuration
func newExtractor(cfg *config.Config) *ffmpeg.Extractor {
	return ffmpeg.NewExtractor(
		ffmpeg.WithFFmpegPath(cfg.Media.FFmpegPath),
		ffmpeg.WithTimeout(cfg.Media.ExtractTimeout),
	)
}

// newPipeline wires the production fetchers, extractor and workspace
func newPipeline(cfg *config.Config, extractor *ffmpeg.Extractor, logger *zap.Logger) *pipeline.Service {
	runner := &command.ExecRunner{}

	remote := fetch.NewHTTPFetcher(
		fetch.WithFetchTimeout(cfg.Media.FetchTimeout),
		fetch.WithPageResolver(fetch.NewYtDlpResolver(cfg.Media.YtDlpPath, runner), cfg.Media.YtDlpHosts...),
		fetch.WithHTTPLogger(logger),
	)
	fetcher := fetch.NewSourceFetcher(remote, fetch.NewLocalFetcher())

	return pipeline.NewService(
		filesystem.NewWorkspace(cfg.Paths.WorkDirectory),
		fetcher,
		extractor,
		filesystem.NewWAVInspector(),
		logger,
	)
}

// newClassifier builds the accent model adapter selected in configuration
func newClassifier(cfg *config.Config) (accent.Classifier, error) {
	switch cfg.Classifier.Mode {
	case config.ClassifierCommand:
		return classifier.NewCommandClassifier(cfg.Classifier.Command, cfg.Classifier.Args, &command.ExecRunner{}, cfg.Classifier.Timeout), nil
	case config.ClassifierHTTP:
		client := &http.Client{Timeout: cfg.Classifier.Timeout}
		return classifier.NewHTTPClassifier(cfg.Classifier.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", cfg.Classifier.Mode)
	}
}

// newAnalysis wires the full analysis service
func newAnalysis(cfg *config.Config, logger *zap.Logger) (*analysis.Service, *ffmpeg.Extractor, error) {
	extractor := newExtractor(cfg)
	model, err := newClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	return analysis.NewService(newPipeline(cfg, extractor, logger), model, logger), extractor, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"accent-detector/domain/media"
	"accent-detector/infrastructure/filesystem"
)

// Artifact is the audio produced by one run. The caller owns it and must
// call Release once the audio is no longer needed.
type Artifact struct {
	AudioPath string
	RunID     string
	Source    media.SourceKind
	Format    media.AudioFormat
	Duration  time.Duration

	run *filesystem.Run
}

// Release removes the run directory holding the audio
func (a *Artifact) Release() error {
	if a == nil || a.run == nil {
		return nil
	}
	return a.run.Remove()
}

// Service turns a video reference into a normalized WAV file
type Service struct {
	workspace *filesystem.Workspace
	fetcher   media.Fetcher
	extractor media.AudioExtractor
	inspector media.FormatInspector
	logger    *zap.Logger
}

// NewService creates a new pipeline service. inspector may be nil to skip format verification.
func NewService(
	workspace *filesystem.Workspace,
	fetcher media.Fetcher,
	extractor media.AudioExtractor,
	inspector media.FormatInspector,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		workspace: workspace,
		fetcher:   fetcher,
		extractor: extractor,
		inspector: inspector,
		logger:    logger,
	}
}

// Process fetches reference into a fresh run directory, extracts its audio
// into outputFilename and returns the artifact. The temporary video is
// removed on every path; on failure the whole run directory is removed.
func (s *Service) Process(ctx context.Context, reference, outputFilename string) (_ *Artifact, err error) {
	started := time.Now()

	if outputFilename == "" {
		outputFilename = media.DefaultOutputFilename
	}
	if err := media.ValidateOutputFilename(outputFilename); err != nil {
		return nil, fmt.Errorf("%w: %q", err, outputFilename)
	}

	run, err := s.workspace.NewRun(ctx)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("run", run.ID))

	defer func() {
		if err == nil {
			return
		}
		if rmErr := run.Remove(); rmErr != nil {
			log.Warn("failed to remove run directory", zap.Error(rmErr))
		}
	}()

	videoPath := run.Path(media.TempVideoFilename)
	audioPath := run.Path(outputFilename)
	defer removeTemp(log, videoPath)

	kind := media.ClassifySource(reference)
	log.Info("fetching video", zap.String("source", kind.String()), zap.String("reference", reference))
	if err := s.fetcher.Fetch(ctx, reference, videoPath); err != nil {
		log.Error("fetch failed", zap.Error(err))
		return nil, err
	}

	log.Info("extracting audio", zap.String("output", audioPath))
	if err := s.extractor.Extract(ctx, videoPath, audioPath); err != nil {
		log.Error("extraction failed", zap.Error(err))
		return nil, err
	}

	format := media.NormalizedFormat
	if s.inspector != nil {
		format, err = s.inspector.Inspect(audioPath)
		if err != nil {
			return nil, &media.ExtractionError{Err: err}
		}
		if format != media.NormalizedFormat {
			return nil, &media.FormatError{Path: audioPath, Got: format, Want: media.NormalizedFormat}
		}
	}

	artifact := &Artifact{
		AudioPath: audioPath,
		RunID:     run.ID,
		Source:    kind,
		Format:    format,
		Duration:  time.Since(started),
		run:       run,
	}
	log.Info("audio ready", zap.String("path", audioPath), zap.Duration("took", artifact.Duration))
	return artifact, nil
}

func removeTemp(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to remove temporary video", zap.String("path", path), zap.Error(err))
	}
}

package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"accent-detector/application/pipeline"
	"accent-detector/domain/accent"
	"accent-detector/domain/media"
)

// Processor produces an audio artifact from a video reference
type Processor interface {
	Process(ctx context.Context, reference, outputFilename string) (*pipeline.Artifact, error)
}

// Analyzer runs the accent analysis for one video reference
type Analyzer interface {
	Analyze(ctx context.Context, reference string) (*Report, error)
}

// Report is the outcome of analyzing one video
type Report struct {
	Reference       string
	Source          media.SourceKind
	Accent          string
	Confidence      float64
	ExtractDuration time.Duration
	ClassifyTime    time.Duration
}

// Percent returns the confidence as a percentage rounded to two decimals
func (r *Report) Percent() float64 {
	return accent.Prediction{Label: r.Accent, Confidence: r.Confidence}.Percent()
}

// Service runs the extraction pipeline and classifies the speaker's accent
type Service struct {
	processor  Processor
	classifier accent.Classifier
	logger     *zap.Logger
}

// NewService creates a new analysis service
func NewService(processor Processor, classifier accent.Classifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		processor:  processor,
		classifier: classifier,
		logger:     logger,
	}
}

// Analyze extracts the audio of reference, classifies it and releases the
// audio artifact before returning
func (s *Service) Analyze(ctx context.Context, reference string) (*Report, error) {
	artifact, err := s.processor.Process(ctx, reference, media.DefaultOutputFilename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := artifact.Release(); err != nil {
			s.logger.Warn("failed to release audio artifact", zap.String("run", artifact.RunID), zap.Error(err))
		}
	}()

	started := time.Now()
	prediction, err := s.classifier.Classify(ctx, artifact.AudioPath)
	if err != nil {
		return nil, err
	}
	if err := prediction.Validate(); err != nil {
		return nil, &accent.ClassificationError{AudioPath: artifact.AudioPath, Err: err}
	}

	report := &Report{
		Reference:       reference,
		Source:          artifact.Source,
		Accent:          prediction.Label,
		Confidence:      prediction.Confidence,
		ExtractDuration: artifact.Duration,
		ClassifyTime:    time.Since(started),
	}
	s.logger.Info("accent classified",
		zap.String("run", artifact.RunID),
		zap.String("accent", report.Accent),
		zap.Float64("confidence", report.Confidence),
	)
	return report, nil
}

// Ensure Service implements Analyzer
var _ Analyzer = (*Service)(nil)

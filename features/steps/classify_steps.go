//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"

	"accent-detector/application/analysis"
	"accent-detector/cmd"
	"accent-detector/domain/accent"

	"github.com/cucumber/godog"
)

// mockModel stands in for the pretrained accent classifier
type mockModel struct {
	prediction accent.Prediction
	sawAudio   bool
}

func (m *mockModel) Classify(ctx context.Context, audioPath string) (accent.Prediction, error) {
	_, err := os.Stat(audioPath)
	m.sawAudio = err == nil
	return m.prediction, nil
}

var sharedModel *mockModel

func InitializeClassifyScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		sharedModel = &mockModel{}
		return c, nil
	})

	ctx.Step(`^the accent model answers "([^"]*)" with score ([0-9.]+)$`, theAccentModelAnswersWithScore)
	ctx.Step(`^I classify "([^"]*)"$`, iClassify)
	ctx.Step(`^the classification should succeed$`, theClassificationShouldSucceed)
	ctx.Step(`^the classification should fail with a classification error$`, theClassificationShouldFailWithAClassificationError)
}

func theAccentModelAnswersWithScore(label string, score float64) error {
	sharedModel.prediction = accent.Prediction{Label: label, Confidence: score}
	return nil
}

func iClassify(reference string) error {
	w := SharedWorld
	service := analysis.NewService(w.pipeline(), sharedModel, nil)
	w.err = cmd.RunClassifyWithDependencies(context.Background(), service, reference, false, w.output)
	return nil
}

func theClassificationShouldSucceed() error {
	if SharedWorld.err != nil {
		return fmt.Errorf("unexpected error: %v", SharedWorld.err)
	}
	if !sharedModel.sawAudio {
		return fmt.Errorf("the model never saw the extracted audio")
	}
	return nil
}

func theClassificationShouldFailWithAClassificationError() error {
	var classErr *accent.ClassificationError
	if !errors.As(SharedWorld.err, &classErr) {
		return fmt.Errorf("expected classification error, got %v", SharedWorld.err)
	}
	return nil
}

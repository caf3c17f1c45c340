package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"accent-detector/domain/accent"
	"accent-detector/infrastructure/command"
)

// CommandClassifier runs an external model process with the audio path as
// its last argument. The process prints {"label": "...", "score": 0.93} as
// its last line of stdout.
type CommandClassifier struct {
	name    string
	args    []string
	runner  command.Runner
	timeout time.Duration
}

// NewCommandClassifier creates a classifier invoking name with args
func NewCommandClassifier(name string, args []string, runner command.Runner, timeout time.Duration) *CommandClassifier {
	if runner == nil {
		runner = &command.ExecRunner{}
	}
	return &CommandClassifier{
		name:    name,
		args:    args,
		runner:  runner,
		timeout: timeout,
	}
}

// Classify implements accent.Classifier
func (c *CommandClassifier) Classify(ctx context.Context, audioPath string) (accent.Prediction, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.args...), audioPath)
	out, err := c.runner.Output(ctx, c.name, args...)
	if err != nil {
		return accent.Prediction{}, &accent.ClassificationError{AudioPath: audioPath, Err: err}
	}

	p, err := parsePrediction(lastLine(out))
	if err != nil {
		return accent.Prediction{}, &accent.ClassificationError{AudioPath: audioPath, Err: err}
	}
	return p, nil
}

// lastLine skips log lines the model runtime may print before the result
func lastLine(out []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	return bytes.TrimSpace(lines[len(lines)-1])
}

func parsePrediction(data []byte) (accent.Prediction, error) {
	if len(data) == 0 {
		return accent.Prediction{}, errors.New("classifier produced no output")
	}

	var raw struct {
		Label *string  `json:"label"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return accent.Prediction{}, fmt.Errorf("failed to parse classifier output: %w", err)
	}
	if raw.Label == nil {
		return accent.Prediction{}, accent.ErrEmptyLabel
	}
	if raw.Score == nil {
		return accent.Prediction{}, errors.New("classifier output has no score")
	}

	p := accent.Prediction{Label: *raw.Label, Confidence: *raw.Score}
	if err := p.Validate(); err != nil {
		return accent.Prediction{}, err
	}
	return p, nil
}

// Ensure CommandClassifier implements accent.Classifier
var _ accent.Classifier = (*CommandClassifier)(nil)

package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"accent-detector/domain/accent"
)

type mockRunner struct {
	name   string
	args   []string
	output string
	err    error
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return []byte(m.output), m.err
}

func (m *mockRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.Output(ctx, name, args...)
}

func TestCommandClassifier_Classify(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		runErr    error
		want      accent.Prediction
		wantErr   bool
		errTarget error
	}{
		{
			name:   "plain json",
			output: `{"label": "us", "score": 0.91}`,
			want:   accent.Prediction{Label: "us", Confidence: 0.91},
		},
		{
			name:   "log lines before result",
			output: "loading model from cache\nusing cpu\n{\"label\": \"england\", \"score\": 0.64}\n",
			want:   accent.Prediction{Label: "england", Confidence: 0.64},
		},
		{
			name:    "process failure",
			runErr:  errors.New("exit status 1"),
			wantErr: true,
		},
		{
			name:    "no output",
			output:  "\n",
			wantErr: true,
		},
		{
			name:    "not json",
			output:  "Accent: us",
			wantErr: true,
		},
		{
			name:      "missing label",
			output:    `{"score": 0.5}`,
			wantErr:   true,
			errTarget: accent.ErrEmptyLabel,
		},
		{
			name:    "missing score",
			output:  `{"label": "us"}`,
			wantErr: true,
		},
		{
			name:      "score out of range",
			output:    `{"label": "us", "score": 3.2}`,
			wantErr:   true,
			errTarget: accent.ErrConfidenceRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: tt.output, err: tt.runErr}
			c := NewCommandClassifier("python3", []string{"scripts/classify_accent.py"}, runner, time.Minute)

			got, err := c.Classify(context.Background(), "/work/runs/1/audio.wav")

			if tt.wantErr {
				var classErr *accent.ClassificationError
				if !errors.As(err, &classErr) {
					t.Fatalf("Classify() error = %v, want *accent.ClassificationError", err)
				}
				if tt.errTarget != nil && !errors.Is(err, tt.errTarget) {
					t.Errorf("Classify() error = %v, want %v", err, tt.errTarget)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
			wantArgs := "scripts/classify_accent.py /work/runs/1/audio.wav"
			if runner.name != "python3" || strings.Join(runner.args, " ") != wantArgs {
				t.Errorf("command = %s %v, want python3 %s", runner.name, runner.args, wantArgs)
			}
		})
	}
}

func TestCommandClassifier_DoesNotMutateArgs(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "classify.py"
	runner := &mockRunner{output: `{"label":"us","score":0.5}`}
	c := NewCommandClassifier("python3", base, runner, 0)

	c.Classify(context.Background(), "a.wav")
	c.Classify(context.Background(), "b.wav")

	if got := strings.Join(runner.args, " "); got != "classify.py b.wav" {
		t.Errorf("args = %q, want %q", got, "classify.py b.wav")
	}
}

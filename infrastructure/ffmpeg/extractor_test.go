package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"accent-detector/domain/media"
)

// mockRunner records commands and returns canned results
type mockRunner struct {
	calls    [][]string
	output   []byte
	err      error
	deadline bool
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.output, m.err
}

func (m *mockRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	_, m.deadline = ctx.Deadline()
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.output, m.err
}

func TestExtractor_Extract_Arguments(t *testing.T) {
	runner := &mockRunner{}
	e := NewExtractor(WithCommandRunner(runner), WithFFmpegPath("/opt/ffmpeg/bin/ffmpeg"))

	if err := e.Extract(context.Background(), "/work/run/temp_video", "/work/run/audio.wav"); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	got := strings.Join(runner.calls[0], " ")
	want := "/opt/ffmpeg/bin/ffmpeg -y -i /work/run/temp_video -vn -acodec pcm_s16le -ar 16000 -ac 1 /work/run/audio.wav"
	if got != want {
		t.Errorf("command = %q\nwant      %q", got, want)
	}
	if runner.deadline {
		t.Error("no deadline expected without WithTimeout")
	}
}

func TestExtractor_Extract_Timeout(t *testing.T) {
	runner := &mockRunner{}
	e := NewExtractor(WithCommandRunner(runner), WithTimeout(time.Minute))

	if err := e.Extract(context.Background(), "in", "out.wav"); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if !runner.deadline {
		t.Error("expected ffmpeg to run under a deadline")
	}
}

func TestExtractor_Extract_Failure(t *testing.T) {
	runner := &mockRunner{
		output: []byte("temp_video: Invalid data found when processing input\n"),
		err:    errors.New("exit status 1"),
	}
	e := NewExtractor(WithCommandRunner(runner))

	err := e.Extract(context.Background(), "temp_video", "audio.wav")

	var extractErr *media.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Extract() error = %v, want *media.ExtractionError", err)
	}
	if !strings.Contains(extractErr.Output, "Invalid data found") {
		t.Errorf("ExtractionError.Output = %q, want ffmpeg diagnostics", extractErr.Output)
	}
	// a plain error carries no exit status
	if extractErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", extractErr.ExitCode)
	}
}

func TestExtractor_Extract_TruncatesOutput(t *testing.T) {
	long := strings.Repeat("x", maxOutputBytes) + "final error line"
	runner := &mockRunner{output: []byte(long), err: errors.New("exit status 1")}
	e := NewExtractor(WithCommandRunner(runner))

	err := e.Extract(context.Background(), "in", "out.wav")

	var extractErr *media.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *media.ExtractionError, got %v", err)
	}
	if !strings.HasSuffix(extractErr.Output, "final error line") {
		t.Error("truncated output should keep the end of the log")
	}
	if len(extractErr.Output) > maxOutputBytes+3 {
		t.Errorf("output length %d exceeds bound", len(extractErr.Output))
	}
}

func TestExtractor_VerifyInstalled(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "installed"},
		{name: "missing", err: errors.New("executable file not found in $PATH"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{err: tt.err}
			e := NewExtractor(WithCommandRunner(runner))

			err := e.VerifyInstalled(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyInstalled() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := strings.Join(runner.calls[0], " "); got != "ffmpeg -version" {
				t.Errorf("command = %q, want %q", got, "ffmpeg -version")
			}
		})
	}
}

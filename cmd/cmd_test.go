package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"accent-detector/application/analysis"
	"accent-detector/application/pipeline"
	"accent-detector/domain/media"
	"accent-detector/infrastructure/config"
	"accent-detector/infrastructure/filesystem"

	"gopkg.in/yaml.v3"
)

type mockFetcher struct {
	err error
}

func (m *mockFetcher) Fetch(ctx context.Context, reference, destination string) error {
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(destination, []byte("video"), 0644)
}

type mockExtractor struct {
	verifyErr error
	verified  bool
}

func (m *mockExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	return os.WriteFile(audioPath, []byte("RIFF....WAVE"), 0644)
}

func (m *mockExtractor) VerifyInstalled(ctx context.Context) error {
	m.verified = true
	return m.verifyErr
}

type mockAnalyzer struct {
	report *analysis.Report
	err    error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, reference string) (*analysis.Report, error) {
	return m.report, m.err
}

var (
	_ analysis.Analyzer = (*mockAnalyzer)(nil)
	_ InstallVerifier   = (*mockExtractor)(nil)
)

func newTestPipeline(t *testing.T, fetcher media.Fetcher, extractor media.AudioExtractor) (*pipeline.Service, *filesystem.Workspace) {
	t.Helper()
	ws := filesystem.NewWorkspace(filepath.Join(t.TempDir(), "work"))
	return pipeline.NewService(ws, fetcher, extractor, nil, nil), ws
}

func runCount(t *testing.T, ws *filesystem.Workspace) int {
	t.Helper()
	entries, _ := os.ReadDir(ws.RunsDir())
	return len(entries)
}

func TestRunExtractAudio_KeepsArtifactInRunDirectory(t *testing.T) {
	extractor := &mockExtractor{}
	proc, ws := newTestPipeline(t, &mockFetcher{}, extractor)
	var out bytes.Buffer

	err := RunExtractAudioWithDependencies(context.Background(), proc, extractor, "https://example.com/a.mp4", "talk.wav", "", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !extractor.verified {
		t.Error("expected ffmpeg to be verified")
	}
	if runCount(t, ws) != 1 {
		t.Errorf("expected the run directory to be kept, found %d", runCount(t, ws))
	}
	if !strings.Contains(out.String(), "talk.wav") {
		t.Errorf("output should name the artifact, got %q", out.String())
	}
}

func TestRunExtractAudio_CopiesToDestination(t *testing.T) {
	extractor := &mockExtractor{}
	proc, ws := newTestPipeline(t, &mockFetcher{}, extractor)
	dest := filepath.Join(t.TempDir(), "out", "speech.wav")
	var out bytes.Buffer

	err := RunExtractAudioWithDependencies(context.Background(), proc, extractor, "https://example.com/a.mp4", "", dest, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination not written: %v", err)
	}
	if string(data) != "RIFF....WAVE" {
		t.Errorf("destination content = %q", data)
	}
	if runCount(t, ws) != 0 {
		t.Errorf("expected the run directory to be released, found %d", runCount(t, ws))
	}
}

func TestRunExtractAudio_VerificationFailure(t *testing.T) {
	extractor := &mockExtractor{verifyErr: errors.New("not found")}
	proc, ws := newTestPipeline(t, &mockFetcher{}, extractor)

	err := RunExtractAudioWithDependencies(context.Background(), proc, extractor, "https://example.com/a.mp4", "", "", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "ffmpeg verification failed") {
		t.Fatalf("expected verification error, got %v", err)
	}
	if runCount(t, ws) != 0 {
		t.Error("no run should start when ffmpeg is missing")
	}
}

func TestRunExtractAudio_NilVerifierSkipsCheck(t *testing.T) {
	proc, ws := newTestPipeline(t, &mockFetcher{}, &mockExtractor{})

	err := RunExtractAudioWithDependencies(context.Background(), proc, nil, "https://example.com/a.mp4", "", "", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runCount(t, ws) != 1 {
		t.Errorf("expected one run directory, found %d", runCount(t, ws))
	}
}

func TestRunExtractAudio_FetchFailure(t *testing.T) {
	proc, ws := newTestPipeline(t, &mockFetcher{err: &media.NotFoundError{Path: "missing.mp4"}}, &mockExtractor{})

	err := RunExtractAudioWithDependencies(context.Background(), proc, nil, "missing.mp4", "", "", &bytes.Buffer{})
	if !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if runCount(t, ws) != 0 {
		t.Error("failed run should leave no directory")
	}
}

func TestRunClassify(t *testing.T) {
	report := &analysis.Report{Accent: "england", Confidence: 0.91234}

	tests := []struct {
		name     string
		asJSON   bool
		analyzer *mockAnalyzer
		want     []string
		wantErr  bool
	}{
		{
			name:     "table",
			analyzer: &mockAnalyzer{report: report},
			want:     []string{"ACCENT", "england", "91.23%"},
		},
		{
			name:     "json",
			asJSON:   true,
			analyzer: &mockAnalyzer{report: report},
			want:     []string{`"accent": "england"`, `"accent_percent": 91.23`},
		},
		{
			name:     "analysis error",
			analyzer: &mockAnalyzer{err: errors.New("boom")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := RunClassifyWithDependencies(context.Background(), tt.analyzer, "talk.mp4", tt.asJSON, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunClassify_JSONIsValid(t *testing.T) {
	var out bytes.Buffer
	analyzer := &mockAnalyzer{report: &analysis.Report{Accent: "us", Confidence: 0.5}}

	if err := RunClassifyWithDependencies(context.Background(), analyzer, "a.mp4", true, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got classifyResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Source != "a.mp4" || got.Percent != 50 {
		t.Errorf("result = %+v", got)
	}
}

func TestRunClean(t *testing.T) {
	ws := filesystem.NewWorkspace(filepath.Join(t.TempDir(), "work"))
	for _, id := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(ws.RunsDir(), id), 0755); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := RunCleanWithDependencies(ws, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Removed 2 run directories") {
		t.Errorf("output = %q", out.String())
	}
	if runCount(t, ws) != 0 {
		t.Error("runs should be removed")
	}

	out.Reset()
	if err := RunCleanWithDependencies(ws, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Nothing to clean") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunClean_BusyWorkspace(t *testing.T) {
	ws := filesystem.NewWorkspace(filepath.Join(t.TempDir(), "work"))
	run, err := ws.NewRun(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer run.Remove()

	err = RunCleanWithDependencies(ws, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "runs are in progress") {
		t.Fatalf("expected busy error, got %v", err)
	}
	if _, statErr := os.Stat(run.Dir); statErr != nil {
		t.Error("active run must not be removed")
	}
}

// mockPrompter answers prompts by message; unknown messages take the default
type mockPrompter struct {
	inputs   map[string]string
	confirms map[string]bool
	selects  map[string]string
	err      error
}

func (m *mockPrompter) Input(message, defaultValue string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if v, ok := m.inputs[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for k, v := range m.confirms {
		if strings.Contains(message, k) {
			return v, nil
		}
	}
	return defaultValue, nil
}

func (m *mockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if v, ok := m.selects[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func TestRunSetup(t *testing.T) {
	tests := []struct {
		name     string
		prompter *mockPrompter
		check    func(t *testing.T, cfg *config.Config)
		wantErr  bool
	}{
		{
			name: "command classifier",
			prompter: &mockPrompter{
				inputs: map[string]string{
					"Where should temporary runs be stored?": "/tmp/accent",
					"Classifier command?":                    "python3 classify.py --model ecapa",
				},
			},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Paths.WorkDirectory != "/tmp/accent" {
					t.Errorf("work directory = %q", cfg.Paths.WorkDirectory)
				}
				if cfg.Classifier.Command != "python3" || strings.Join(cfg.Classifier.Args, " ") != "classify.py --model ecapa" {
					t.Errorf("classifier = %+v", cfg.Classifier)
				}
			},
		},
		{
			name: "http classifier",
			prompter: &mockPrompter{
				selects: map[string]string{"How should the accent model be reached?": config.ClassifierHTTP},
				inputs:  map[string]string{"Inference endpoint URL?": "http://localhost:9000/classify"},
			},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Classifier.Mode != config.ClassifierHTTP || cfg.Classifier.URL != "http://localhost:9000/classify" {
					t.Errorf("classifier = %+v", cfg.Classifier)
				}
			},
		},
		{
			name: "http classifier without url",
			prompter: &mockPrompter{
				selects: map[string]string{"How should the accent model be reached?": config.ClassifierHTTP},
			},
			wantErr: true,
		},
		{
			name:     "cancelled",
			prompter: &mockPrompter{err: errors.New("interrupt")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config", "config.yaml")
			err := RunSetupWithPrompter(tt.prompter, path, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, statErr := os.Stat(path); statErr == nil {
					t.Error("config should not be written on error")
				}
				return
			}

			cfg, err := config.Load(path)
			if err != nil {
				t.Fatalf("saved config does not load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestRunSetup_KeepsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("paths:\n  work_directory: keep\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := RunSetupWithPrompter(&mockPrompter{confirms: map[string]bool{"Overwrite": false}}, path, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "keep") {
		t.Error("existing config was overwritten")
	}
	if !strings.Contains(out.String(), "Setup cancelled") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunConfigShow(t *testing.T) {
	var out bytes.Buffer
	if err := RunConfigShowWithDependencies(config.Default(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got config.Config
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.Server.ListenAddress != config.Default().Server.ListenAddress {
		t.Errorf("listen address = %q", got.Server.ListenAddress)
	}
}

func TestRunConfigValidate(t *testing.T) {
	valid := config.Default()
	invalid := config.Default()
	invalid.Classifier.Mode = "grpc"

	var out bytes.Buffer
	if err := RunConfigValidateWithDependencies(valid, "config.yaml", &out); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := RunConfigValidateWithDependencies(invalid, "config.yaml", &out); err == nil {
		t.Error("invalid mode accepted")
	}
	if err := RunConfigValidateWithDependencies(nil, "config.yaml", &out); err == nil {
		t.Error("nil config accepted")
	}
}

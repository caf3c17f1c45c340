//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"accent-detector/application/pipeline"
	"accent-detector/infrastructure/fetch"
	"accent-detector/infrastructure/ffmpeg"
	"accent-detector/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// mockTransport serves canned responses for remote video URLs
type mockTransport struct {
	responses map[string]int
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	status, ok := m.responses[req.URL.String()]
	if !ok {
		status = http.StatusNotFound
	}
	body := ""
	if status == http.StatusOK {
		body = "fake video bytes"
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// mockFFmpeg implements command.Runner and writes a normalized WAV on success
type mockFFmpeg struct {
	calls      [][]string
	failOutput string
}

func (m *mockFFmpeg) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("ffmpeg version 7.0"), nil
}

func (m *mockFFmpeg) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, args)
	if m.failOutput != "" {
		return []byte(m.failOutput), errors.New("exit status 1")
	}
	return nil, os.WriteFile(args[len(args)-1], normalizedWAV(), 0644)
}

// normalizedWAV returns a mono 16 kHz 16-bit WAV with a short silent data chunk
func normalizedWAV() []byte {
	const dataSize = 320
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // channels
	binary.Write(&buf, binary.LittleEndian, uint32(16000)) // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(32000)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))     // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))    // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

// world holds the state shared by every scenario
type world struct {
	tempDir   string
	workspace *filesystem.Workspace
	transport *mockTransport
	ffmpeg    *mockFFmpeg
	output    *bytes.Buffer
	err       error
}

// SharedWorld is reset before each scenario via Before hook
var SharedWorld *world

func (w *world) pipeline() *pipeline.Service {
	remote := fetch.NewHTTPFetcher(fetch.WithHTTPClient(&http.Client{Transport: w.transport}))
	return pipeline.NewService(
		w.workspace,
		fetch.NewSourceFetcher(remote, fetch.NewLocalFetcher()),
		w.extractor(),
		filesystem.NewWAVInspector(),
		nil,
	)
}

func (w *world) extractor() *ffmpeg.Extractor {
	return ffmpeg.NewExtractor(ffmpeg.WithCommandRunner(w.ffmpeg))
}

func (w *world) runDirs() []string {
	entries, _ := os.ReadDir(w.workspace.RunsDir())
	var dirs []string
	for _, e := range entries {
		dirs = append(dirs, e.Name())
	}
	return dirs
}

// InitializeCommonScenario registers the steps shared across features
func InitializeCommonScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "accent-features-*")
		if err != nil {
			return c, err
		}
		SharedWorld = &world{
			tempDir:   tempDir,
			workspace: filesystem.NewWorkspace(filepath.Join(tempDir, "work")),
			transport: &mockTransport{responses: make(map[string]int)},
			ffmpeg:    &mockFFmpeg{},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedWorld != nil {
			os.RemoveAll(SharedWorld.tempDir)
		}
		SharedWorld = nil
		return c, nil
	})

	ctx.Step(`^an empty work directory$`, anEmptyWorkDirectory)
	ctx.Step(`^a remote video at "([^"]*)"$`, aRemoteVideoAt)
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
	ctx.Step(`^no run directories should remain$`, noRunDirectoriesShouldRemain)
}

func anEmptyWorkDirectory() error {
	if dirs := SharedWorld.runDirs(); len(dirs) != 0 {
		return fmt.Errorf("expected no runs, found %v", dirs)
	}
	return nil
}

func aRemoteVideoAt(url string) error {
	SharedWorld.transport.responses[url] = http.StatusOK
	return nil
}

func theOutputShouldContain(text string) error {
	if !strings.Contains(SharedWorld.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, SharedWorld.output.String())
	}
	return nil
}

func noRunDirectoriesShouldRemain() error {
	if dirs := SharedWorld.runDirs(); len(dirs) != 0 {
		return fmt.Errorf("expected no run directories, found %v", dirs)
	}
	return nil
}

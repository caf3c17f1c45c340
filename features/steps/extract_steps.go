//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"accent-detector/cmd"
	"accent-detector/domain/media"

	"github.com/cucumber/godog"
)

const refusingServerURL = "https://media.test/video.mp4"

// extractContext holds test state for extract scenarios
type extractContext struct {
	localVideo string
}

var sharedExtractContext *extractContext

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		sharedExtractContext = &extractContext{}
		return c, nil
	})

	ctx.Step(`^a local video named "([^"]*)"$`, aLocalVideoNamed)
	ctx.Step(`^the remote server answers with status (\d+)$`, theRemoteServerAnswersWithStatus)
	ctx.Step(`^ffmpeg fails with output "([^"]*)"$`, ffmpegFailsWithOutput)
	ctx.Step(`^I extract audio from "([^"]*)"$`, iExtractAudioFrom)
	ctx.Step(`^I extract audio from the local video to "([^"]*)"$`, iExtractAudioFromTheLocalVideoTo)
	ctx.Step(`^I extract audio from the remote server$`, iExtractAudioFromTheRemoteServer)
	ctx.Step(`^the extraction should succeed$`, theExtractionShouldSucceed)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
	ctx.Step(`^the audio file should be named "([^"]*)"$`, theAudioFileShouldBeNamed)
	ctx.Step(`^no temporary video should remain$`, noTemporaryVideoShouldRemain)
	ctx.Step(`^the destination "([^"]*)" should exist$`, theDestinationShouldExist)
	ctx.Step(`^the extraction should fail with a not found error$`, theExtractionShouldFailWithANotFoundError)
	ctx.Step(`^the extraction should fail with a fetch error carrying status (\d+)$`, theExtractionShouldFailWithAFetchErrorCarryingStatus)
	ctx.Step(`^the extraction should fail with an extraction error mentioning "([^"]*)"$`, theExtractionShouldFailWithAnExtractionErrorMentioning)
}

func aLocalVideoNamed(name string) error {
	path := filepath.Join(SharedWorld.tempDir, name)
	if err := os.WriteFile(path, []byte("local video bytes"), 0644); err != nil {
		return err
	}
	sharedExtractContext.localVideo = path
	return nil
}

func theRemoteServerAnswersWithStatus(status int) error {
	SharedWorld.transport.responses[refusingServerURL] = status
	return nil
}

func ffmpegFailsWithOutput(output string) error {
	SharedWorld.ffmpeg.failOutput = output
	return nil
}

func extractAudio(reference, destination string) {
	w := SharedWorld
	w.err = cmd.RunExtractAudioWithDependencies(
		context.Background(),
		w.pipeline(),
		w.extractor(),
		reference,
		"",
		destination,
		w.output,
	)
}

func iExtractAudioFrom(reference string) error {
	extractAudio(reference, "")
	return nil
}

func iExtractAudioFromTheLocalVideoTo(name string) error {
	extractAudio(sharedExtractContext.localVideo, filepath.Join(SharedWorld.tempDir, name))
	return nil
}

func iExtractAudioFromTheRemoteServer() error {
	extractAudio(refusingServerURL, "")
	return nil
}

func theExtractionShouldSucceed() error {
	if SharedWorld.err != nil {
		return fmt.Errorf("unexpected error: %v", SharedWorld.err)
	}
	return nil
}

func lastFFmpegCall() ([]string, error) {
	calls := SharedWorld.ffmpeg.calls
	if len(calls) == 0 {
		return nil, fmt.Errorf("ffmpeg was not called")
	}
	return calls[len(calls)-1], nil
}

func ffmpegShouldHaveBeenCalledWithArguments(doc *godog.DocString) error {
	args, err := lastFFmpegCall()
	if err != nil {
		return err
	}

	want := strings.TrimSpace(doc.Content)
	want = strings.ReplaceAll(want, "{video}", args[2])
	want = strings.ReplaceAll(want, "{audio}", args[len(args)-1])
	got := strings.Join(args, " ")
	if got != want {
		return fmt.Errorf("ffmpeg args mismatch\nexpected: %s\ngot:      %s", want, got)
	}

	if filepath.Base(args[2]) != media.TempVideoFilename {
		return fmt.Errorf("expected ffmpeg input to be the temporary video, got %s", args[2])
	}
	if filepath.Dir(args[2]) != filepath.Dir(args[len(args)-1]) {
		return fmt.Errorf("video and audio should share the run directory")
	}
	return nil
}

func theAudioFileShouldBeNamed(name string) error {
	args, err := lastFFmpegCall()
	if err != nil {
		return err
	}
	audio := args[len(args)-1]
	if filepath.Base(audio) != name {
		return fmt.Errorf("expected audio file %q, got %q", name, filepath.Base(audio))
	}
	if _, err := os.Stat(audio); err != nil {
		return fmt.Errorf("audio file missing: %v", err)
	}
	return nil
}

func noTemporaryVideoShouldRemain() error {
	for _, dir := range SharedWorld.runDirs() {
		temp := filepath.Join(SharedWorld.workspace.RunsDir(), dir, media.TempVideoFilename)
		if _, err := os.Stat(temp); err == nil {
			return fmt.Errorf("temporary video still exists: %s", temp)
		}
	}
	return nil
}

func theDestinationShouldExist(name string) error {
	path := filepath.Join(SharedWorld.tempDir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("destination missing: %v", err)
	}
	defer f.Close()

	format, err := media.ReadAudioFormat(f)
	if err != nil {
		return fmt.Errorf("destination is not a WAV file: %v", err)
	}
	if format != media.NormalizedFormat {
		return fmt.Errorf("destination format = %v, want %v", format, media.NormalizedFormat)
	}
	return nil
}

func theExtractionShouldFailWithANotFoundError() error {
	if !errors.Is(SharedWorld.err, media.ErrNotFound) {
		return fmt.Errorf("expected not found error, got %v", SharedWorld.err)
	}
	return nil
}

func theExtractionShouldFailWithAFetchErrorCarryingStatus(status int) error {
	var fetchErr *media.FetchError
	if !errors.As(SharedWorld.err, &fetchErr) {
		return fmt.Errorf("expected fetch error, got %v", SharedWorld.err)
	}
	if fetchErr.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d", status, fetchErr.StatusCode)
	}
	return nil
}

func theExtractionShouldFailWithAnExtractionErrorMentioning(text string) error {
	var extractErr *media.ExtractionError
	if !errors.As(SharedWorld.err, &extractErr) {
		return fmt.Errorf("expected extraction error, got %v", SharedWorld.err)
	}
	if !strings.Contains(extractErr.Error(), text) {
		return fmt.Errorf("expected extraction error to mention %q, got %v", text, extractErr)
	}
	return nil
}

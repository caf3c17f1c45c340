package media

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError
var ErrNotFound = errors.New("input not found")

// NotFoundError is returned when a local input reference does not exist
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("local video file not found: %s", e.Path)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError is returned when a remote download fails or a local copy cannot be made.
// StatusCode is zero when no HTTP response was received.
type FetchError struct {
	Reference  string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to fetch %s: status %d", e.Reference, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("failed to fetch %s: %v", e.Reference, e.Err)
	default:
		return fmt.Sprintf("failed to fetch %s", e.Reference)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError is returned when the media tool fails.
// ExitCode is -1 when the tool could not be started or was killed.
type ExtractionError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("audio extraction failed (exit code %d)", e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a produced audio file is not in the normalized format
type FormatError struct {
	Path string
	Got  AudioFormat
	Want AudioFormat
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("audio file %s has format %s, want %s", e.Path, e.Got, e.Want)
}

// ErrInvalidOutputFilename is returned for output names containing path separators or reserved names
var ErrInvalidOutputFilename = errors.New("output filename must be a plain file name")

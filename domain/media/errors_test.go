package media

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &NotFoundError{Path: "/missing.mp4"})

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(%v, ErrNotFound) = false, want true", err)
	}
	if !strings.Contains(err.Error(), "/missing.mp4") {
		t.Errorf("error %q should mention the path", err)
	}
}

func TestFetchError_Error(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{
			name: "status code",
			err:  &FetchError{Reference: "https://x/v.mp4", StatusCode: 404},
			want: "status 404",
		},
		{
			name: "wrapped cause",
			err:  &FetchError{Reference: "https://x/v.mp4", Err: cause},
			want: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.want)
			}
		})
	}

	if !errors.Is(&FetchError{Err: cause}, cause) {
		t.Error("FetchError should unwrap to its cause")
	}
}

func TestExtractionError_IncludesOutput(t *testing.T) {
	err := &ExtractionError{ExitCode: 1, Output: "Invalid data found when processing input"}

	msg := err.Error()
	if !strings.Contains(msg, "exit code 1") {
		t.Errorf("Error() = %q, want exit code", msg)
	}
	if !strings.Contains(msg, "Invalid data found") {
		t.Errorf("Error() = %q, want tool output", msg)
	}

	var target *ExtractionError
	if !errors.As(fmt.Errorf("pipeline: %w", err), &target) || target.ExitCode != 1 {
		t.Error("errors.As should find the ExtractionError")
	}
}

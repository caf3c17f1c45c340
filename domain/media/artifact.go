package media

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultOutputFilename is used when the caller does not name the audio artifact
	DefaultOutputFilename = "audio.wav"

	// TempVideoFilename is the name of the fetched video inside a run directory
	TempVideoFilename = "temp_video"
)

// ValidateOutputFilename checks that name is a bare file name that stays inside a run directory
func ValidateOutputFilename(name string) error {
	if name == "" || name == "." || name == ".." || name == TempVideoFilename {
		return ErrInvalidOutputFilename
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidOutputFilename
	}
	return nil
}

package filesystem

import (
	"bufio"
	"fmt"
	"os"

	"accent-detector/domain/media"
)

// WAVInspector implements media.FormatInspector by reading the RIFF header
type WAVInspector struct{}

// NewWAVInspector creates a new WAVInspector
func NewWAVInspector() *WAVInspector {
	return &WAVInspector{}
}

// Inspect returns the audio format of the WAV file at path
func (i *WAVInspector) Inspect(path string) (media.AudioFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return media.AudioFormat{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	format, err := media.ReadAudioFormat(bufio.NewReader(f))
	if err != nil {
		return media.AudioFormat{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return format, nil
}

// Ensure WAVInspector implements media.FormatInspector
var _ media.FormatInspector = (*WAVInspector)(nil)

package media

import "context"

// Fetcher materializes an input reference into a local file at destination.
// On error the destination must be treated as unusable.
type Fetcher interface {
	Fetch(ctx context.Context, reference, destination string) error
}

// AudioExtractor converts a video file into a normalized WAV file,
// overwriting any file already at audioPath
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// FormatInspector reads the audio format of a produced artifact
type FormatInspector interface {
	Inspect(path string) (AudioFormat, error)
}

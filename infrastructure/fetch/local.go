package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"accent-detector/domain/media"
)

// LocalFetcher copies a local video into the working directory
type LocalFetcher struct{}

// NewLocalFetcher creates a new LocalFetcher
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{}
}

// Fetch implements media.Fetcher. The copy is byte-for-byte; file metadata is not preserved.
func (f *LocalFetcher) Fetch(ctx context.Context, reference, destination string) error {
	info, err := os.Stat(reference)
	if errors.Is(err, fs.ErrNotExist) {
		return &media.NotFoundError{Path: reference}
	}
	if err != nil {
		return &media.FetchError{Reference: reference, Err: err}
	}
	if info.IsDir() {
		return &media.FetchError{Reference: reference, Err: errors.New("is a directory")}
	}

	src, err := os.Open(reference)
	if err != nil {
		return &media.FetchError{Reference: reference, Err: err}
	}
	defer src.Close()

	dst, err := os.Create(destination)
	if err != nil {
		return &media.FetchError{Reference: reference, Err: fmt.Errorf("failed to create %s: %w", destination, err)}
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(destination)
		if copyErr == nil {
			copyErr = closeErr
		}
		return &media.FetchError{Reference: reference, Err: fmt.Errorf("failed to copy video: %w", copyErr)}
	}

	return nil
}

// Ensure LocalFetcher implements media.Fetcher
var _ media.Fetcher = (*LocalFetcher)(nil)

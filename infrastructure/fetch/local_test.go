package fetch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"accent-detector/domain/media"
)

func TestLocalFetcher_Fetch_CopiesBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input.mp4")
	content := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 0xff, 0x10}
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "temp_video")

	if err := NewLocalFetcher().Fetch(context.Background(), src, dest); err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("copy = %v, want %v", got, content)
	}
}

func TestLocalFetcher_Fetch_Missing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "temp_video")

	err := NewLocalFetcher().Fetch(context.Background(), filepath.Join(dir, "nope.mp4"), dest)

	if !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("Fetch() error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination must not be created for a missing input")
	}
}

func TestLocalFetcher_Fetch_Directory(t *testing.T) {
	dir := t.TempDir()

	err := NewLocalFetcher().Fetch(context.Background(), dir, filepath.Join(dir, "temp_video"))

	var fetchErr *media.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *media.FetchError", err)
	}
}

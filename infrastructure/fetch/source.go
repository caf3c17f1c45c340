package fetch

import (
	"context"

	"accent-detector/domain/media"
)

// SourceFetcher picks the remote or local fetcher from the shape of the reference
type SourceFetcher struct {
	remote media.Fetcher
	local  media.Fetcher
}

// NewSourceFetcher creates a new SourceFetcher
func NewSourceFetcher(remote, local media.Fetcher) *SourceFetcher {
	return &SourceFetcher{remote: remote, local: local}
}

// Fetch implements media.Fetcher
func (f *SourceFetcher) Fetch(ctx context.Context, reference, destination string) error {
	if media.ClassifySource(reference) == media.Remote {
		return f.remote.Fetch(ctx, reference, destination)
	}
	return f.local.Fetch(ctx, reference, destination)
}

// Ensure SourceFetcher implements media.Fetcher
var _ media.Fetcher = (*SourceFetcher)(nil)

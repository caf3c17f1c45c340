package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"accent-detector/domain/media"
)

// DefaultChunkSize is the buffer used to stream response bodies to disk
const DefaultChunkSize = 32 * 1024

// PageResolver turns a video page URL into a direct media URL
type PageResolver interface {
	ResolveMediaURL(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher downloads remote references with a streaming GET
type HTTPFetcher struct {
	client        *http.Client
	chunkSize     int
	timeout       time.Duration
	resolver      PageResolver
	resolverHosts []string
	logger        *zap.Logger
}

// HTTPOption is a functional option for configuring HTTPFetcher
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets the client used for downloads
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithChunkSize sets the copy buffer size
func WithChunkSize(n int) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithFetchTimeout bounds a whole download, including reading the body
func WithFetchTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithPageResolver resolves URLs on the given hosts (and their subdomains)
// through resolver before downloading
func WithPageResolver(resolver PageResolver, hosts ...string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.resolver = resolver
		f.resolverHosts = hosts
	}
}

// WithHTTPLogger sets the logger
func WithHTTPLogger(logger *zap.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a new HTTPFetcher
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{},
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch implements media.Fetcher. The destination is only created after a
// 200 response and is removed again if the body cannot be copied completely.
func (f *HTTPFetcher) Fetch(ctx context.Context, reference, destination string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	downloadURL := reference
	if f.shouldResolve(reference) {
		resolved, err := f.resolver.ResolveMediaURL(ctx, reference)
		if err != nil {
			return &media.FetchError{Reference: reference, Err: err}
		}
		f.logger.Debug("resolved media url", zap.String("page", reference))
		downloadURL = resolved
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return &media.FetchError{Reference: reference, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &media.FetchError{Reference: reference, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &media.FetchError{Reference: reference, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(destination)
	if err != nil {
		return &media.FetchError{Reference: reference, Err: fmt.Errorf("failed to create %s: %w", destination, err)}
	}

	// Hide ReaderFrom/WriterTo so the copy goes through the fixed buffer
	buf := make([]byte, f.chunkSize)
	written, copyErr := io.CopyBuffer(struct{ io.Writer }{out}, struct{ io.Reader }{resp.Body}, buf)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(destination)
		if copyErr == nil {
			copyErr = closeErr
		}
		return &media.FetchError{Reference: reference, Err: fmt.Errorf("failed to write video: %w", copyErr)}
	}

	f.logger.Info("downloaded video",
		zap.String("url", reference),
		zap.String("size", humanize.Bytes(uint64(written))),
	)
	return nil
}

func (f *HTTPFetcher) shouldResolve(reference string) bool {
	if f.resolver == nil || len(f.resolverHosts) == 0 {
		return false
	}
	u, err := url.Parse(reference)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range f.resolverHosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Ensure HTTPFetcher implements media.Fetcher
var _ media.Fetcher = (*HTTPFetcher)(nil)

package boundary

import (
	"context"
	"densitymap/pkg/serrors"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher downloads the boundary source. It is safe for concurrent use.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewFetcher creates a Fetcher bounding every download by timeout.
func NewFetcher(httpClient *http.Client, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Fetcher{httpClient: httpClient, timeout: timeout}
}

// Fetch downloads url. A download that does not complete within the
// timeout fails with UPSTREAM_TIMEOUT; a non-2xx answer fails with
// SOURCE_READ_ERROR. A partial body is never returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classify(err, "could not fetch %s", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err, "could not read %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(b))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}

		return nil, serrors.With(serrors.ErrSourceRead, "fetching %s failed with status %d: %s", url, resp.StatusCode, snippet)
	}

	return b, nil
}

func classify(err error, msgFmt string, args ...any) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return serrors.Wrap(serrors.ErrUpstreamTimeout, err, msgFmt, args...)
	}

	return serrors.Wrap(serrors.ErrSourceRead, err, msgFmt, args...)
}

// ReadSource returns the raw boundary source: url is downloaded when set,
// otherwise path is read.
func ReadSource(ctx context.Context, f *Fetcher, path, url string) ([]byte, error) {
	if url != "" {
		return f.Fetch(ctx, url)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "reading boundary source")
	}

	return b, nil
}

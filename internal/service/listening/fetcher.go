// internal/service/listening/fetcher.go

package listening

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds every individual source request
const DefaultRequestTimeout = 8 * time.Second

const maxPayloadBytes = 4 << 20

// DefaultUserAgents is rotated per request so that consecutive calls do not
// share a fingerprint
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1",
}

// Accept headers by payload kind
const (
	AcceptJSON = "application/json, text/plain, */*"
	AcceptFeed = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
)

// HTTPFetcher performs single GET requests against trend sources
type HTTPFetcher struct {
	client     *http.Client
	timeout    time.Duration
	userAgents []string
	pick       func(n int) int
}

// HTTPFetcherOption customizes an HTTPFetcher
type HTTPFetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgents replaces the user agent pool
func WithUserAgents(agents []string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithPicker replaces the random index chooser used for user agent rotation
func WithPicker(pick func(n int) int) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.pick = pick }
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout
func NewHTTPFetcher(timeout time.Duration, opts ...HTTPFetcherOption) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	f := &HTTPFetcher{
		client:     &http.Client{},
		timeout:    timeout,
		userAgents: DefaultUserAgents,
		pick:       rand.Intn,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get fetches url and returns the response body. Any non-2xx status is an error.
func (f *HTTPFetcher) Get(ctx context.Context, url, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

func (f *HTTPFetcher) userAgent() string {
	return f.userAgents[f.pick(len(f.userAgents))]
}

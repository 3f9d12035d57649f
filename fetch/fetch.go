// Package fetch retrieves article pages over HTTP the way a browser would.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent identifies requests as a desktop browser; several
// publishers reject obvious bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodySize caps how much of a page is read into memory.
const maxBodySize = 10 << 20

// Fetcher performs article page GETs with a fixed header set.
type Fetcher struct {
	client  *http.Client
	headers http.Header
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client. Its Timeout is left as given.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.headers.Set("User-Agent", ua)
		}
	}
}

// NewFetcher creates a fetcher with timeout and the browser header set.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		client:  &http.Client{Timeout: timeout},
		headers: BrowserHeaders(DefaultUserAgent),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BrowserHeaders returns the header set sent with every request.
func BrowserHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return h
}

// Client returns the underlying HTTP client so the feed reader can share
// its transport and timeout.
func (f *Fetcher) Client() *http.Client { return f.client }

// UserAgent returns the configured User-Agent header.
func (f *Fetcher) UserAgent() string { return f.headers.Get("User-Agent") }

// Fetch returns the body at url decoded to UTF-8. The encoding comes from
// the Content-Type header, then a BOM or meta tag, and defaults to
// windows-1252 for bytes that are not valid UTF-8. Transport errors,
// timeouts and HTTP status codes of 400 and above are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	for k, v := range f.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("failed to fetch %s: HTTP error: %s", url, resp.Status)
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode body of %s: %w", url, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return body, nil
}

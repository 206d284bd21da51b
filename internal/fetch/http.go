// Package fetch retrieves corpus files over HTTP and keeps local copies of them.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL hosts the five corpus files.
	DefaultBaseURL = "https://raw.githubusercontent.com/allancoding/scriptures/main/"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "versefetch/1.0"

	// DefaultTimeout bounds one request, body included.
	DefaultTimeout = 60 * time.Second

	// MaxBodySize caps a corpus download (the largest file is ~15 MB).
	MaxBodySize = 128 << 20
)

// HTTPError represents a non-success HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// IsNotFound returns true if this is a 404 error.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	BaseURL   string        // Prefix joined with the file id
	UserAgent string        // User-Agent header
	Timeout   time.Duration // Per-request timeout, 0 means DefaultTimeout
	RateLimit float64       // Requests per second, 0 disables throttling
	Client    *http.Client  // Optional client; Timeout is ignored when set
}

// HTTPFetcher downloads corpus files from a base URL.
type HTTPFetcher struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) (*HTTPFetcher, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("unsupported URL scheme: %s", base)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	f := &HTTPFetcher{
		baseURL:    base,
		userAgent:  userAgent,
		httpClient: client,
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return f, nil
}

// URL returns the download URL for a file id.
func (f *HTTPFetcher) URL(fileID string) string {
	return f.baseURL + fileID
}

// Fetch downloads one corpus file and returns its body.
func (f *HTTPFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("empty file id")
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	url := f.URL(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, MaxBodySize)
	}
	return data, nil
}

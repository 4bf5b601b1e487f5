package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	CurrentURL  = "https://djmag.com/top100djs"
	YearURL     = "https://djmag.com/top100djs/{year}"
	UserAgent   = "top100-archive/1.0 (github.com/pfrederiksen/top100-archive)"
	Timeout     = 20 * time.Second
	yearPattern = "{year}"
)

// Fetcher retrieves ranking pages over HTTP
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithClient replaces the HTTP client used for requests
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// New creates a new Fetcher instance
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatURL substitutes year into a URL template containing {year}
func FormatURL(template string, year int) string {
	return strings.ReplaceAll(template, yearPattern, strconv.Itoa(year))
}

// Fetch performs a single GET request and returns the response body.
// Any transport failure or non-2xx status is reported as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("fetching page: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	return string(body), nil
}

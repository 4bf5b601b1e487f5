package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
	}{
		{
			name:        "successful fetch",
			htmlContent: `<html><body><a href="/top100djs/2024/1/martin-garrix">Martin Garrix</a></body></html>`,
			statusCode:  http.StatusOK,
			wantError:   false,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "top100-archive") {
					t.Errorf("User-Agent = %q, should contain 'top100-archive'", userAgent)
				}

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			body, err := New().Fetch(context.Background(), server.URL)

			if tt.wantError {
				if err == nil {
					t.Fatal("Fetch() expected error, got nil")
				}
				var fetchErr *FetchError
				if !errors.As(err, &fetchErr) {
					t.Fatalf("Fetch() error = %T, want *FetchError", err)
				}
				if fetchErr.StatusCode != tt.statusCode {
					t.Errorf("FetchError.StatusCode = %d, want %d", fetchErr.StatusCode, tt.statusCode)
				}
				if body != "" {
					t.Errorf("Fetch() body = %q on error, want empty", body)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if body != tt.htmlContent {
				t.Errorf("Fetch() body = %q, want %q", body, tt.htmlContent)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New(WithTimeout(20*time.Millisecond)).Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("FetchError.URL = %q, want %q", fetchErr.URL, server.URL)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New().Fetch(context.Background(), url)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
}

func TestNew(t *testing.T) {
	f := New()

	if f == nil {
		t.Fatal("New() returned nil")
	}
	if f.client == nil {
		t.Error("fetcher client is nil")
	}
	if f.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", f.client.Timeout, Timeout)
	}
	if f.userAgent != UserAgent {
		t.Errorf("user agent = %q, want %q", f.userAgent, UserAgent)
	}
}

func TestNew_Options(t *testing.T) {
	client := &http.Client{}
	f := New(WithClient(client), WithUserAgent("custom/2.0"), WithTimeout(5*time.Second))

	if f.client != client {
		t.Error("WithClient did not replace the client")
	}
	if f.userAgent != "custom/2.0" {
		t.Errorf("user agent = %q, want custom/2.0", f.userAgent)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s", client.Timeout)
	}

	f = New(WithUserAgent(""))
	if f.userAgent != UserAgent {
		t.Errorf("empty user agent should keep default, got %q", f.userAgent)
	}
}

func TestFormatURL(t *testing.T) {
	tests := []struct {
		template string
		year     int
		expected string
	}{
		{YearURL, 2024, "https://djmag.com/top100djs/2024"},
		{"https://example.com/{year}/list?y={year}", 2010, "https://example.com/2010/list?y=2010"},
		{CurrentURL, 2024, CurrentURL},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatURL(tt.template, tt.year); got != tt.expected {
				t.Errorf("FormatURL(%q, %d) = %q, want %q", tt.template, tt.year, got, tt.expected)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	fetchErr := &FetchError{URL: "https://djmag.com/top100djs/2024", Err: errors.New("unexpected status code: 503")}
	if !strings.Contains(fetchErr.Error(), "fetch https://djmag.com/top100djs/2024") {
		t.Errorf("FetchError message = %q", fetchErr.Error())
	}

	parseErr := &ParseError{Year: 2024, Extractor: "links", Reason: "no entry links found"}
	if parseErr.Error() != "parse 2024 (links): no entry links found" {
		t.Errorf("ParseError message = %q", parseErr.Error())
	}
}

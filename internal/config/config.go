// Package config defines the archiver's configuration and how it is loaded.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and TOP100_* environment variables.
// - Errors wrap ErrLoadConfig or ErrInvalidConfig so callers can use errors.Is.
package config

import (
	"time"

	"github.com/pfrederiksen/top100-archive/internal/scraper"
)

// RefreshPolicy selects which years of the configured range are scraped.
type RefreshPolicy string

const (
	// RefreshAll re-scrapes every year in range.
	RefreshAll RefreshPolicy = "all"
	// RefreshMissing scrapes the current year and any year without an archive.
	RefreshMissing RefreshPolicy = "missing"
	// RefreshCurrent scrapes only the current year.
	RefreshCurrent RefreshPolicy = "current"
)

// FirstPollYear is the earliest year with a published Top 100 on djmag.com.
const FirstPollYear = 2004

// Config contains process configuration.
type Config struct {
	// BaseURL is the per-year page template; {year} is replaced with the poll year.
	BaseURL string `koanf:"base_url" validate:"required,contains={year}"`

	// CurrentURL is the landing page of the latest poll. Empty disables the
	// JSON-LD source for the current year.
	CurrentURL string `koanf:"current_url"`

	// ArchiveDir is where <year>.csv files are written.
	ArchiveDir string `koanf:"archive_dir" validate:"required"`

	// StartYear and EndYear bound the processed years. EndYear 0 means the current year.
	StartYear int `koanf:"start_year" validate:"gte=1000,lte=9999"`
	EndYear   int `koanf:"end_year" validate:"omitempty,gte=1000,lte=9999,gtefield=StartYear"`

	// Refresh is one of all, missing, current.
	Refresh RefreshPolicy `koanf:"refresh" validate:"oneof=all missing current"`

	// MaxEntries caps the ranking length; 0 keeps every entry.
	MaxEntries int `koanf:"max_entries" validate:"gte=0"`

	UserAgent string        `koanf:"user_agent" validate:"required"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// MetricsFile, when set, receives Prometheus text-format metrics after each run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		BaseURL:    scraper.YearURL,
		CurrentURL: scraper.CurrentURL,
		ArchiveDir: "djmag_rankings",
		StartYear:  FirstPollYear,
		Refresh:    RefreshMissing,
		MaxEntries: 100,
		UserAgent:  scraper.UserAgent,
		Timeout:    scraper.Timeout,
		LogLevel:   "info",
	}
}

// YearRange returns the first and last year to process relative to now.
// A StartYear after the resolved EndYear yields first > last, an empty range.
func (c *Config) YearRange(now time.Time) (first, last int) {
	last = c.EndYear
	if last == 0 {
		last = now.Year()
	}
	return c.StartYear, last
}

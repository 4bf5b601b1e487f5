package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/top100-archive/internal/archive"
	"github.com/pfrederiksen/top100-archive/internal/config"
	"github.com/pfrederiksen/top100-archive/internal/logger"
	"github.com/pfrederiksen/top100-archive/internal/rank"
	"github.com/pfrederiksen/top100-archive/internal/scraper"
)

// Status is the outcome of processing one poll year
type Status string

const (
	StatusCreated   Status = "created"
	StatusReplaced  Status = "replaced"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Stage names the pipeline step a year failed in
type Stage string

const (
	StageFetch       Stage = "fetch"
	StageParse       Stage = "parse"
	StageWrite       Stage = "write"
	StageConsolidate Stage = "consolidate"
)

// Fetcher retrieves the markup behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// YearResult reports what happened to one poll year
type YearResult struct {
	Year      int              `json:"year"`
	Status    Status           `json:"status"`
	Stage     Stage            `json:"stage,omitempty"`
	Source    string           `json:"source,omitempty"`
	Extractor string           `json:"extractor,omitempty"`
	Entries   int              `json:"entries"`
	Changes   *rank.DiffResult `json:"changes,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Report summarizes a run
type Report struct {
	RunID        string       `json:"run_id"`
	StartedAt    time.Time    `json:"started_at"`
	Refresh      string       `json:"refresh"`
	Years        []YearResult `json:"years"`
	Consolidated string       `json:"consolidated,omitempty"`
	Written      int          `json:"written"`
	Failed       int          `json:"failed"`
}

// source pairs a page with the extractor that understands it
type source struct {
	url       string
	extractor scraper.Extractor
}

// Runner processes the configured poll years one after another
type Runner struct {
	cfg     *config.Config
	fetcher Fetcher
	archive *archive.Archive
	metrics *logger.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewRunner creates a Runner. A nil metrics tracker gets a private one.
func NewRunner(cfg *config.Config, fetcher Fetcher, arc *archive.Archive, metrics *logger.Metrics) *Runner {
	if metrics == nil {
		metrics = logger.NewMetrics()
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		archive: arc,
		metrics: metrics,
		log:     logger.Default(),
		now:     time.Now,
	}
}

// Run fetches, parses and archives every selected year. A failure for one year
// does not stop the others; the returned error joins all per-year errors.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	started := r.now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
		Refresh:   string(r.cfg.Refresh),
	}
	log := r.log.With(logger.Fields{"run_id": report.RunID})

	first, last := r.cfg.YearRange(started)
	current := started.Year()
	log.Info("Starting run", logger.Fields{
		"first_year":  first,
		"last_year":   last,
		"refresh":     r.cfg.Refresh,
		"archive_dir": r.archive.Dir(),
	})

	var errs []error
	for year := first; year <= last; year++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if !r.shouldScrape(year, current) {
			report.Years = append(report.Years, YearResult{Year: year, Status: StatusSkipped})
			r.metrics.RecordYear(string(StatusSkipped))
			log.Debug("Skipping year", logger.Fields{"year": year})
			continue
		}

		result, err := r.processYear(ctx, log, year, current)
		report.Years = append(report.Years, result)
		r.metrics.RecordYear(string(result.Status))

		switch result.Status {
		case StatusFailed:
			report.Failed++
			errs = append(errs, fmt.Errorf("year %d: %s failed: %w", year, result.Stage, err))
			log.Error("Year failed", logger.Fields{"year": year, "stage": result.Stage}, err)
			continue
		case StatusCreated, StatusReplaced:
			report.Written++
		}
		r.metrics.SetEntries(year, result.Entries)
		log.Info("Year archived", logger.Fields{
			"year":      year,
			"status":    result.Status,
			"entries":   result.Entries,
			"extractor": result.Extractor,
		})
	}

	path, _, err := r.archive.WriteConsolidated()
	switch {
	case err == nil:
		report.Consolidated = path
	case errors.Is(err, archive.ErrNoArchives):
		log.Warn("No archives to consolidate", nil)
	default:
		errs = append(errs, fmt.Errorf("%s failed: %w", StageConsolidate, err))
		log.Error("Consolidation failed", nil, err)
	}

	finished := r.now()
	r.metrics.SetRunDuration(finished.Sub(started))

	runErr := errors.Join(errs...)
	if runErr == nil {
		r.metrics.MarkSuccess(finished)
	}
	log.Info("Run finished", logger.Fields{"written": report.Written, "failed": report.Failed})

	return report, runErr
}

// shouldScrape applies the refresh policy to one year
func (r *Runner) shouldScrape(year, current int) bool {
	switch r.cfg.Refresh {
	case config.RefreshAll:
		return true
	case config.RefreshCurrent:
		return year == current
	default:
		return year == current || !r.archive.Exists(year)
	}
}

// sources lists the pages to try for year, in order
func (r *Runner) sources(year, current int) []source {
	var sources []source
	if year == current && r.cfg.CurrentURL != "" {
		sources = append(sources, source{url: r.cfg.CurrentURL, extractor: scraper.JSONLDExtractor{}})
	}
	return append(sources, source{
		url:       scraper.FormatURL(r.cfg.BaseURL, year),
		extractor: scraper.LinkExtractor{},
	})
}

// processYear runs fetch, parse and write for one year
func (r *Runner) processYear(ctx context.Context, log *logger.Logger, year, current int) (YearResult, error) {
	result := YearResult{Year: year}

	fail := func(err error) (YearResult, error) {
		result.Status = StatusFailed
		result.Stage = stageOf(err)
		result.Error = err.Error()
		return result, err
	}

	var (
		names   []string
		lastErr error
	)
	sources := r.sources(year, current)
	for i, src := range sources {
		start := time.Now()
		markup, err := r.fetcher.Fetch(ctx, src.url)
		r.metrics.ObserveFetch(src.extractor.Name(), time.Since(start))
		if err == nil {
			names, err = src.extractor.Extract(markup, year)
		}
		if err == nil {
			result.Source = src.url
			result.Extractor = src.extractor.Name()
			break
		}

		lastErr = err
		if i < len(sources)-1 {
			log.Warn("Source failed, trying next", logger.Fields{
				"year":      year,
				"url":       src.url,
				"extractor": src.extractor.Name(),
				"error":     err.Error(),
			})
		}
	}
	if result.Source == "" {
		return fail(lastErr)
	}

	entries := rank.NewEntries(year, names, r.cfg.MaxEntries)
	if len(entries) == 0 {
		return fail(&scraper.ParseError{Year: year, Extractor: result.Extractor, Reason: "no usable names"})
	}
	result.Entries = len(entries)

	previous, err := r.archive.Load(year)
	if err != nil {
		log.Warn("Existing archive unreadable, replacing it", logger.Fields{"year": year, "error": err.Error()})
		previous = nil
	}

	outcome, err := r.archive.Write(year, entries)
	if err != nil {
		return fail(err)
	}

	result.Status = Status(outcome)
	if previous != nil && outcome == archive.OutcomeReplaced {
		result.Changes = rank.Diff(previous, entries)
	}
	return result, nil
}

// stageOf maps an error to the pipeline stage that produced it
func stageOf(err error) Stage {
	var (
		fetchErr *scraper.FetchError
		parseErr *scraper.ParseError
		writeErr *archive.WriteError
	)
	switch {
	case errors.As(err, &fetchErr):
		return StageFetch
	case errors.As(err, &parseErr):
		return StageParse
	case errors.As(err, &writeErr):
		return StageWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StageFetch
	default:
		return StageWrite
	}
}

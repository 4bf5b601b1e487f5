package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/top100-archive/internal/archive"
	"github.com/pfrederiksen/top100-archive/internal/config"
	"github.com/pfrederiksen/top100-archive/internal/logger"
	"github.com/pfrederiksen/top100-archive/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig      string
	flagYear        int
	flagFrom        int
	flagTo          int
	flagArchiveDir  string
	flagRefresh     string
	flagFormat      string
	flagMetricsFile string
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top100-archive",
		Short: "Archive the DJ Mag Top 100 DJs poll as yearly CSV files",
		Long: `A CLI tool that fetches the DJ Mag Top 100 DJs poll for each configured year
and keeps one CSV archive per year plus a consolidated file of all years.
Archives are replaced atomically and left untouched when nothing changed.`,
		RunE:          runArchive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (or TOP100_CONFIG)")
	cmd.Flags().IntVar(&flagYear, "year", 0, "Process a single poll year, regardless of refresh policy")
	cmd.Flags().IntVar(&flagFrom, "from", 0, "First poll year to process")
	cmd.Flags().IntVar(&flagTo, "to", 0, "Last poll year to process (default: current year)")
	cmd.Flags().StringVar(&flagArchiveDir, "archive-dir", "", "Directory holding the CSV archives")
	cmd.Flags().StringVar(&flagRefresh, "refresh", "", "Which years to scrape: all, missing or current")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// loadConfig loads layered config and applies explicitly set flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context(), flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("from") {
		cfg.StartYear = flagFrom
	}
	if flags.Changed("to") {
		cfg.EndYear = flagTo
	}
	if flags.Changed("year") {
		cfg.StartYear, cfg.EndYear = flagYear, flagYear
		cfg.Refresh = config.RefreshAll
	}
	if flags.Changed("archive-dir") {
		cfg.ArchiveDir = flagArchiveDir
	}
	if flags.Changed("refresh") {
		cfg.Refresh = config.RefreshPolicy(strings.ToLower(flagRefresh))
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runArchive is the main command logic
func runArchive(cmd *cobra.Command, args []string) error {
	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	arc, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		return fmt.Errorf("initializing archive: %w", err)
	}

	fetcher := scraper.New(
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithTimeout(cfg.Timeout),
	)
	metrics := logger.NewMetrics()

	report, runErr := NewRunner(cfg, fetcher, arc, metrics).Run(cmd.Context())

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Writing metrics failed", logger.Fields{"path": cfg.MetricsFile}, err)
		}
	}

	if err := WriteOutput(cmd.OutOrStdout(), report, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return runErr
}

// Execute runs the CLI
func Execute() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the run report in the specified format
func WriteOutput(w io.Writer, report *Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as JSON
func writeJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeText outputs the report as human-readable text
func writeText(w io.Writer, report *Report, verbose bool) error {
	if len(report.Years) == 0 {
		fmt.Fprintln(w, "No poll years selected.")
		return nil
	}

	skipped := 0
	for _, yr := range report.Years {
		switch yr.Status {
		case StatusSkipped:
			skipped++
			if verbose {
				fmt.Fprintf(w, "%d: skipped (archive exists)\n", yr.Year)
			}
		case StatusFailed:
			fmt.Fprintf(w, "%d: FAILED at %s: %s\n", yr.Year, yr.Stage, yr.Error)
		default:
			fmt.Fprintf(w, "%d: %s (%d entries%s)\n", yr.Year, yr.Status, yr.Entries, changeSummary(yr))
			if verbose {
				writeChanges(w, yr)
			}
		}
	}

	if report.Consolidated != "" {
		fmt.Fprintf(w, "\nConsolidated: %s\n", report.Consolidated)
	}
	fmt.Fprintf(w, "\nTotal: %d years, %d written, %d skipped, %d failed\n",
		len(report.Years), report.Written, skipped, report.Failed)

	return nil
}

// changeSummary renders ", 2 new, 1 dropped, 5 moved" for replaced years
func changeSummary(yr YearResult) string {
	if yr.Changes.Empty() {
		return ""
	}

	var parts []string
	if n := len(yr.Changes.New); n > 0 {
		parts = append(parts, fmt.Sprintf("%d new", n))
	}
	if n := len(yr.Changes.Dropped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", n))
	}
	if n := len(yr.Changes.Moved); n > 0 {
		parts = append(parts, fmt.Sprintf("%d moved", n))
	}
	return ", " + strings.Join(parts, ", ")
}

func writeChanges(w io.Writer, yr YearResult) {
	if yr.Changes.Empty() {
		return
	}
	for _, e := range yr.Changes.New {
		fmt.Fprintf(w, "  NEW: #%d %s\n", e.Position, e.Name)
	}
	for _, e := range yr.Changes.Dropped {
		fmt.Fprintf(w, "  DROPPED: %s (was #%d)\n", e.Name, e.Position)
	}
	for _, m := range yr.Changes.Moved {
		fmt.Fprintf(w, "  MOVED: %s #%d -> #%d\n", m.Name, m.From, m.To)
	}
}

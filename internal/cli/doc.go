// Package cli implements the command-line interface for top100-archive.
//
// The cli package provides the Cobra-based command that loads configuration,
// runs the fetch/parse/archive pipeline for each selected poll year, and reports
// the outcome as text or JSON. It coordinates the scraper, archive and rank
// packages; the exit code is non-zero when any year fails.
package cli

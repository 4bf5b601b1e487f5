package archive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pfrederiksen/top100-archive/internal/rank"
)

// ErrNoArchives is returned when there is nothing to consolidate
var ErrNoArchives = errors.New("no yearly archives found")

// ConsolidatedPattern matches every consolidated file name
const ConsolidatedPattern = "all (*).csv"

// ConsolidatedPath returns the consolidated file path for a span of years
func (a *Archive) ConsolidatedPath(first, last int) string {
	return filepath.Join(a.dir, fmt.Sprintf("all (%d-%d).csv", first, last))
}

// WriteConsolidated rebuilds the consolidated file from every yearly archive.
// Rows are ordered newest year first, then by position. Consolidated files for
// other year spans are removed once the new one is in place.
func (a *Archive) WriteConsolidated() (string, Outcome, error) {
	years, err := a.Years()
	if err != nil {
		return "", "", err
	}
	if len(years) == 0 {
		return "", "", ErrNoArchives
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var all []rank.Entry
	for _, year := range years {
		entries, err := a.Load(year)
		if err != nil {
			return "", "", err
		}
		if err := rank.Validate(entries); err != nil {
			return "", "", fmt.Errorf("archive %s: %w", a.Path(year), err)
		}
		all = append(all, entries...)
	}

	path := a.ConsolidatedPath(years[len(years)-1], years[0])

	data, err := encode(all)
	if err != nil {
		return "", "", &WriteError{Path: path, Err: err}
	}

	outcome := OutcomeCreated
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		outcome = OutcomeUnchanged
	case err == nil:
		outcome = OutcomeReplaced
	case !errors.Is(err, os.ErrNotExist):
		return "", "", &WriteError{Path: path, Err: fmt.Errorf("reading existing file: %w", err)}
	}

	if outcome != OutcomeUnchanged {
		if err := a.writeAtomic(path, data); err != nil {
			return "", "", err
		}
	}

	if err := a.removeStaleConsolidated(path); err != nil {
		return path, outcome, err
	}

	return path, outcome, nil
}

// removeStaleConsolidated deletes consolidated files other than keep
func (a *Archive) removeStaleConsolidated(keep string) error {
	dirEntries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("listing consolidated files: %w", err)
	}

	for _, de := range dirEntries {
		if ok, _ := filepath.Match(ConsolidatedPattern, de.Name()); !ok || !de.Type().IsRegular() {
			continue
		}
		path := filepath.Join(a.dir, de.Name())
		if path == keep {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale consolidated file: %w", err)
		}
	}
	return nil
}

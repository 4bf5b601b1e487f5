package rank

import (
	"errors"
	"fmt"
	"strings"
)

// Entry represents one ranked name in a given poll year
type Entry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
}

// ErrInvalidRanking is returned by Validate for rankings that break the
// position invariants.
var ErrInvalidRanking = errors.New("invalid ranking")

// NewEntries builds entries for year from names in display order.
// Blank names are dropped before positions are assigned. When max is greater
// than zero the ranking is truncated to the first max entries.
func NewEntries(year int, names []string, max int) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if max > 0 && len(entries) == max {
			break
		}
		entries = append(entries, Entry{
			Position: len(entries) + 1,
			Name:     name,
			Year:     year,
		})
	}
	return entries
}

// Validate checks that entries form a single year's ranking ordered by
// position with positions exactly 1..N and non-empty names.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidRanking)
	}

	year := entries[0].Year
	for i, e := range entries {
		if e.Year != year {
			return fmt.Errorf("%w: mixed years %d and %d", ErrInvalidRanking, year, e.Year)
		}
		if e.Position != i+1 {
			return fmt.Errorf("%w: position %d at index %d", ErrInvalidRanking, e.Position, i)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: empty name at position %d", ErrInvalidRanking, e.Position)
		}
	}

	return nil
}

// Names returns the entry names in position order
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Equal reports whether two rankings hold the same rows
func Equal(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

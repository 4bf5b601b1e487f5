package archive

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pfrederiksen/top100-archive/internal/rank"
)

// Outcome describes what Write did to the archive file
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeReplaced  Outcome = "replaced"
	OutcomeUnchanged Outcome = "unchanged"
)

// Header is the first row of every archive file
var Header = []string{"position", "name", "year"}

// WriteError reports a failed archive update. The previous file, if any, is left intact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Archive handles persistence of yearly ranking files
type Archive struct {
	dir string

	// rename is swapped in tests to simulate a crash between write and rename
	rename func(oldpath, newpath string) error
}

// New creates a new Archive rooted at dir
func New(dir string) (*Archive, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	return &Archive{
		dir:    dir,
		rename: os.Rename,
	}, nil
}

// Dir returns the archive directory
func (a *Archive) Dir() string {
	return a.dir
}

// Path returns the archive file path for year
func (a *Archive) Path(year int) string {
	return filepath.Join(a.dir, fmt.Sprintf("%d.csv", year))
}

// Exists reports whether an archive file for year is present
func (a *Archive) Exists(year int) bool {
	info, err := os.Stat(a.Path(year))
	return err == nil && info.Mode().IsRegular()
}

// Years lists the years that have an archive file, ascending
func (a *Archive) Years() ([]int, error) {
	dirEntries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	years := make([]int, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSuffix(name, ".csv"))
		if err != nil || year < 1000 || year > 9999 {
			continue
		}
		years = append(years, year)
	}

	sort.Ints(years)
	return years, nil
}

// Load reads the archive for year. A missing file yields no entries and no error.
func (a *Archive) Load(year int) ([]rank.Entry, error) {
	f, err := os.Open(a.Path(year))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", a.Path(year), err)
	}
	return entries, nil
}

// Write replaces the archive for year with entries.
// The freshly scraped list is authoritative: existing rows are never merged.
// When the encoded file equals the one on disk nothing is written.
func (a *Archive) Write(year int, entries []rank.Entry) (Outcome, error) {
	path := a.Path(year)

	if err := rank.Validate(entries); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if entries[0].Year != year {
		return "", &WriteError{Path: path, Err: fmt.Errorf("entries belong to %d", entries[0].Year)}
	}

	data, err := encode(entries)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	existing, err := os.ReadFile(path)
	exists := err == nil
	switch {
	case exists:
		if bytes.Equal(existing, data) {
			return OutcomeUnchanged, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", &WriteError{Path: path, Err: fmt.Errorf("reading existing archive: %w", err)}
	}

	if err := a.writeAtomic(path, data); err != nil {
		return "", err
	}

	if !exists {
		return OutcomeCreated, nil
	}
	return OutcomeReplaced, nil
}

// writeAtomic writes data to a temp file next to path, syncs it and renames it into place
func (a *Archive) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(a.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return cleanup(fmt.Errorf("setting permissions: %w", err))
	}
	if err := a.rename(tmpPath, path); err != nil {
		return cleanup(fmt.Errorf("replacing archive: %w", err))
	}

	return nil
}

func encode(entries []rank.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	for _, e := range entries {
		row := []string{strconv.Itoa(e.Position), e.Name, strconv.Itoa(e.Year)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encoding position %d: %w", e.Position, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encoding csv: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(r io.Reader) ([]rank.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range Header {
		if !strings.EqualFold(strings.TrimPrefix(header[i], "\ufeff"), col) {
			return nil, fmt.Errorf("unexpected header %v", header)
		}
	}

	var entries []rank.Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		position, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", record[0], err)
		}
		year, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", record[2], err)
		}
		entries = append(entries, rank.Entry{Position: position, Name: record[1], Year: year})
	}

	return entries, nil
}

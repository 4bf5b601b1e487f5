package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/top100-archive/internal/rank"
)

func TestWriteConsolidated(t *testing.T) {
	a := newTestArchive(t)

	_, err := a.Write(2004, rank.NewEntries(2004, []string{"Paul Van Dyk", "Tiësto"}, 0))
	require.NoError(t, err)
	_, err = a.Write(2005, rank.NewEntries(2005, []string{"Tiësto", "Paul Van Dyk"}, 0))
	require.NoError(t, err)

	path, outcome, err := a.WriteConsolidated()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, filepath.Join(a.Dir(), "all (2004-2005).csv"), path)

	want := "position,name,year\n" +
		"1,Tiësto,2005\n2,Paul Van Dyk,2005\n" +
		"1,Paul Van Dyk,2004\n2,Tiësto,2004\n"
	assert.Equal(t, want, readFile(t, path))

	_, outcome, err = a.WriteConsolidated()
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestWriteConsolidated_RemovesStaleSpans(t *testing.T) {
	a := newTestArchive(t)

	_, err := a.Write(2004, rank.NewEntries(2004, []string{"Paul Van Dyk"}, 0))
	require.NoError(t, err)
	oldPath, _, err := a.WriteConsolidated()
	require.NoError(t, err)

	_, err = a.Write(2005, rank.NewEntries(2005, []string{"Tiësto"}, 0))
	require.NoError(t, err)
	newPath, _, err := a.WriteConsolidated()
	require.NoError(t, err)

	assert.NotEqual(t, oldPath, newPath)
	_, err = os.Stat(oldPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
}

func TestWriteConsolidated_Empty(t *testing.T) {
	a := newTestArchive(t)

	_, _, err := a.WriteConsolidated()
	assert.ErrorIs(t, err, ErrNoArchives)
}

func TestWriteConsolidated_InvalidArchive(t *testing.T) {
	a := newTestArchive(t)

	require.NoError(t, os.WriteFile(a.Path(2010), []byte("position,name,year\n2,Armin,2010\n"), 0644))

	_, _, err := a.WriteConsolidated()
	assert.ErrorIs(t, err, rank.ErrInvalidRanking)
}

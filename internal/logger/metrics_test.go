package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Years(t *testing.T) {
	m := NewMetrics()

	m.RecordYear("created")
	m.RecordYear("created")
	m.RecordYear("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.years.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.years.WithLabelValues("failed")))
}

func TestMetrics_Gauges(t *testing.T) {
	m := NewMetrics()

	m.SetEntries(2024, 50)
	m.SetEntries(2024, 100)
	m.MarkSuccess(time.Unix(1700000000, 0))
	m.SetRunDuration(1500 * time.Millisecond)

	assert.Equal(t, 100.0, testutil.ToFloat64(m.entries.WithLabelValues("2024")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSuccess))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.runDuration))
}

func TestMetrics_Fetch(t *testing.T) {
	m := NewMetrics()

	m.ObserveFetch("links", 100*time.Millisecond)
	m.ObserveFetch("links", 300*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordYear("unchanged")
	m.SetEntries(2019, 100)

	path := filepath.Join(t.TempDir(), "top100.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, `top100_archive_years_total{status="unchanged"} 1`), text)
	assert.True(t, strings.Contains(text, `top100_archive_entries{year="2019"} 100`), text)
}

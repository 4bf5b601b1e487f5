package logger

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "top100_archive"

// Metrics tracks run metrics on a private Prometheus registry.
// The scheduled job writes them once per run with WriteTextfile for the
// node_exporter textfile collector.
type Metrics struct {
	registry      *prometheus.Registry
	years         *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	entries       *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
	runDuration   prometheus.Gauge
}

// NewMetrics creates a metrics tracker with all collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		years: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_total",
			Help:      "Poll years processed, by outcome.",
		}, []string{"status"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of ranking page fetches.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"extractor"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Entries archived for a poll year.",
		}, []string{"year"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without errors.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}

	m.registry.MustRegister(m.years, m.fetchDuration, m.entries, m.lastSuccess, m.runDuration)
	return m
}

// RecordYear counts one processed year with the given status
func (m *Metrics) RecordYear(status string) {
	m.years.WithLabelValues(status).Inc()
}

// ObserveFetch records the duration of one fetch
func (m *Metrics) ObserveFetch(extractor string, d time.Duration) {
	m.fetchDuration.WithLabelValues(extractor).Observe(d.Seconds())
}

// SetEntries records the number of archived entries for year
func (m *Metrics) SetEntries(year, count int) {
	m.entries.WithLabelValues(strconv.Itoa(year)).Set(float64(count))
}

// MarkSuccess records the completion time of a fully successful run
func (m *Metrics) MarkSuccess(t time.Time) {
	m.lastSuccess.Set(float64(t.Unix()))
}

// SetRunDuration records the wall time of the run
func (m *Metrics) SetRunDuration(d time.Duration) {
	m.runDuration.Set(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

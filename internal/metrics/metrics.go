// Package metrics exposes import and search counters in Prometheus format.
//
// Counters live on a private registry so tests can build independent
// instances. The HTTP server serves them through Handler; the import command
// writes them to a textfile for node_exporter's textfile collector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopdir"

// Import run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	importRows *prometheus.CounterVec
	importRuns *prometheus.CounterVec
	searches   prometheus.Counter
}

// New creates a registry with the shopdir counters. When withRuntime is set
// the Go runtime and process collectors are registered too.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows processed by the CSV import, by result.",
		}, []string{"result"}),
		importRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Completed import runs, by outcome.",
		}, []string{"outcome"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shop_searches_total",
			Help:      "Shop listing requests served.",
		}),
	}

	m.registry.MustRegister(m.importRows, m.importRuns, m.searches)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// RowImported counts a persisted row. It satisfies core.Recorder.
func (m *Metrics) RowImported() {
	m.importRows.WithLabelValues("imported").Inc()
}

// RowFailed counts a row that could not be persisted.
func (m *Metrics) RowFailed() {
	m.importRows.WithLabelValues("failed").Inc()
}

// RunFinished counts an import run by outcome.
func (m *Metrics) RunFinished(outcome string) {
	m.importRuns.WithLabelValues(outcome).Inc()
}

// SearchServed counts a shop listing request.
func (m *Metrics) SearchServed() {
	m.searches.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

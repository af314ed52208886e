// Package metrics exposes Prometheus instruments for dataset loads and dashboard evaluations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the dashboard instruments. A nil Recorder is valid and records nothing.
type Recorder struct {
	loadDuration *prometheus.HistogramVec
	tableRows    *prometheus.GaugeVec
	evaluations  *prometheus.CounterVec
	evalDuration prometheus.Histogram
	filteredRows prometheus.Histogram
}

// New registers the dashboard metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	r := &Recorder{
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time spent reading the dataset tables.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dataset_table_rows",
			Help: "Rows held in memory per dataset table.",
		}, []string{"table"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_evaluations_total",
			Help: "Dashboard filter evaluations by surface.",
		}, []string{"surface"}),
		evalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_evaluation_duration_seconds",
			Help:    "Duration of one filter and aggregate pass.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		filteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filtered_rows",
			Help:    "Rows left after applying the dashboard filter.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	reg.MustRegister(r.loadDuration, r.tableRows, r.evaluations, r.evalDuration, r.filteredRows)
	return r
}

// ObserveLoad records how long the named source took to load.
func (r *Recorder) ObserveLoad(source string, d time.Duration) {
	if r == nil || r.loadDuration == nil {
		return
	}
	r.loadDuration.WithLabelValues(normalizeLabel(source)).Observe(d.Seconds())
}

// SetTableRows records the size of a loaded table.
func (r *Recorder) SetTableRows(table string, n int) {
	if r == nil || r.tableRows == nil {
		return
	}
	r.tableRows.WithLabelValues(normalizeLabel(table)).Set(float64(n))
}

// ObserveEvaluation records one dashboard evaluation served through surface.
func (r *Recorder) ObserveEvaluation(surface string, d time.Duration, rows int) {
	if r == nil || r.evaluations == nil {
		return
	}
	r.evaluations.WithLabelValues(normalizeLabel(surface)).Inc()
	r.evalDuration.Observe(d.Seconds())
	r.filteredRows.Observe(float64(rows))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

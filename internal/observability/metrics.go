package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the ingestion pipeline.
type Metrics struct {
	Uploads           *prometheus.CounterVec // labels: outcome={replaced,ignored,parse_failed}, series
	RowsIngested      *prometheus.CounterVec // labels: series
	NonNumericCells   *prometheus.CounterVec // labels: series
	SkippedRows       prometheus.Counter
	IngestDuration    prometheus.Histogram
	AverageCongestion prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Uploads,
		m.RowsIngested,
		m.NonNumericCells,
		m.SkippedRows,
		m.IngestDuration,
		m.AverageCongestion,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcity",
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome and target series.",
		}, []string{"outcome", "series"}),
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcity",
			Name:      "rows_ingested_total",
			Help:      "Rows written into a series by uploads.",
		}, []string{"series"}),
		NonNumericCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcity",
			Name:      "non_numeric_cells_total",
			Help:      "Numeric cells that did not parse and were stored as NaN.",
		}, []string{"series"}),
		SkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartcity",
			Name:      "skipped_rows_total",
			Help:      "Lines the CSV reader rejected.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smartcity",
			Name:      "ingest_duration_seconds",
			Help:      "Time from upload start to series replacement.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		AverageCongestion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "smartcity",
			Name:      "average_congestion_index",
			Help:      "Mean congestion index of the current traffic series.",
		}),
	}
}

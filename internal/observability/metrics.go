package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "waterpoints"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Catalog loading metrics.
	CatalogSourceLoads    *prometheus.CounterVec   // labels: source, outcome={success,error}
	CatalogFetchDuration  *prometheus.HistogramVec // labels: source
	CatalogFeatures       prometheus.Gauge
	CatalogStaleDiscarded prometheus.Counter

	// Selection and reporting metrics.
	SelectionLookups *prometheus.CounterVec // labels: result={hit,miss}
	ReportsSubmitted *prometheus.CounterVec // labels: outcome={success,error,rejected}
	ReportEvents     *prometheus.CounterVec // labels: outcome={success,error}

	// QR sticker metrics.
	QRRenders prometheus.Counter
	QRCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.CatalogSourceLoads,
		m.CatalogFetchDuration,
		m.CatalogFeatures,
		m.CatalogStaleDiscarded,
		m.SelectionLookups,
		m.ReportsSubmitted,
		m.ReportEvents,
		m.QRRenders,
		m.QRCache,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogSourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_source_loads_total",
			Help:      "Catalog source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		CatalogFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Duration of a single catalog source fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CatalogFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_features",
			Help:      "Number of features in the published catalog snapshot.",
		}),
		CatalogStaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_stale_loads_discarded_total",
			Help:      "Completed catalog loads dropped because a newer load was issued.",
		}),
		SelectionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_lookups_total",
			Help:      "Point lookups by id parameter, by result.",
		}, []string{"result"}),
		ReportsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Report submissions by outcome.",
		}, []string{"outcome"}),
		ReportEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_events_published_total",
			Help:      "Report events published to Kafka by outcome.",
		}, []string{"outcome"}),
		QRRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_renders_total",
			Help:      "QR code images encoded.",
		}),
		QRCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_cache_total",
			Help:      "QR image cache lookups by result.",
		}, []string{"result"}),
	}
}

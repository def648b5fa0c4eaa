// Package metrics provides Prometheus metrics for the stufe assessment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Core business metrics.
	dimensionsScored  prometheus.Counter
	overviewBuilds    prometheus.Counter
	clusterAggregates prometheus.Counter
	forecastsComputed prometheus.Counter
	forecastsRejected prometheus.Counter
	similarityQueries prometheus.Counter

	// Session and store health.
	activeSessions   prometheus.Gauge
	historyRecords   prometheus.Gauge
	storeReadLatency prometheus.Histogram
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter

	// HTTP performance.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance on a custom registry so that default Go
// collectors do not pollute the exposition.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stufe",
		subsystem:        "assessment",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initInstruments()
	return m
}

func (m *Manager) initInstruments() {
	factory := promauto.With(m.registry)

	m.dimensionsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dimensions_scored_total",
		Help:      "Number of dimension maturity computations performed.",
	})
	m.overviewBuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overview_builds_total",
		Help:      "Number of overview tables built.",
	})
	m.clusterAggregates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cluster_aggregates_total",
		Help:      "Number of cluster value aggregations performed.",
	})
	m.forecastsComputed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecasts_computed_total",
		Help:      "Number of forecasts computed.",
	})
	m.forecastsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecasts_rejected_total",
		Help:      "Number of forecast requests rejected for insufficient history.",
	})
	m.similarityQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "similarity_queries_total",
		Help:      "Number of similarity ranking queries.",
	})

	m.activeSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of live assessment sessions.",
	})
	m.historyRecords = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_records",
		Help:      "Number of records held by the history store.",
	})
	m.storeReadLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_read_duration_ms",
		Help:      "History store read latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_cache_hits_total",
		Help:      "History store read-cache hits.",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_cache_misses_total",
		Help:      "History store read-cache misses.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
	m.httpErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "HTTP error responses by endpoint and class.",
	}, []string{"endpoint", "class"})
}

// Registry returns the manager's Prometheus registry for exposition.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// GetRegistry returns the global registry.
func GetRegistry() *prometheus.Registry { return globalManager.Registry() }

// Package-level helpers delegating to the global manager.

func RecordDimensionScored()  { globalManager.dimensionsScored.Inc() }
func RecordOverviewBuilt()    { globalManager.overviewBuilds.Inc() }
func RecordClusterAggregate() { globalManager.clusterAggregates.Inc() }
func RecordForecast()         { globalManager.forecastsComputed.Inc() }
func RecordForecastRejected() { globalManager.forecastsRejected.Inc() }
func RecordSimilarityQuery()  { globalManager.similarityQueries.Inc() }

func UpdateActiveSessions(n int)  { globalManager.activeSessions.Set(float64(n)) }
func UpdateHistoryRecords(n int)  { globalManager.historyRecords.Set(float64(n)) }
func RecordStoreRead(ms float64)  { globalManager.storeReadLatency.Observe(ms) }
func RecordCacheHit()             { globalManager.cacheHits.Inc() }
func RecordCacheMiss()            { globalManager.cacheMisses.Inc() }

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records the duration of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, class string) {
	globalManager.httpErrors.WithLabelValues(endpoint, class).Inc()
}

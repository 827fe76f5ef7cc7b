package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for the API. Every method
// tolerates a nil receiver so instrumentation can be switched off wholesale.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	reconcileTotal  *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService builds an isolated registry with the API's collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &MetricsService{
		registry: registry,
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		reconcileTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_reconciliations_total",
			Help: "Total roster reconciliation calls by outcome",
		}, []string{"outcome"}),
		cacheLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the scrape endpoint for this registry.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one request's latency and outcome.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveReconciliation counts a reconciliation call by outcome.
func (m *MetricsService) ObserveReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheOperation records a cache lookup and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite records the duration of a cache set.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records the duration of a named database query.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

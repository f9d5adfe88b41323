// Package metrics exposes the engine's Prometheus collectors: HTTP request
// latency, the WebSocket hub's broadcast latency, per-type message
// throughput, active connection counts, Postgres query latency, and
// connectivity-cache hit/miss counters.
//
// Grounded on the sibling mud-platform-backend service's metrics.Metrics
// struct, generalized from package-scoped fields into package-level
// collectors registered once at init, matching this engine's preference
// for package-level singletons over an injected struct (see
// internal/logging's zerolog global logger for the same pattern).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"method", "path", "status"})

	hubBroadcastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ws_hub_broadcast_duration_seconds",
		Help:    "Time to fan a grid delta out to every connected client",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_messages_processed_total",
		Help: "Total WebSocket messages processed, by type",
	}, []string{"type"})

	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Current number of open WebSocket connections",
	})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Postgres query latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"operation", "table"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connectivity_cache_hits_total",
		Help: "Connectivity cache lookups that found a precomputed entry",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connectivity_cache_misses_total",
		Help: "Connectivity cache lookups that found nothing",
	})
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records HTTP request latency labeled by method, path, and
// status code.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.statusCode)).Observe(time.Since(start).Seconds())
	})
}

// RecordHubBroadcast records how long one WebSocket hub fan-out took.
func RecordHubBroadcast(d time.Duration) {
	hubBroadcastDuration.Observe(d.Seconds())
}

// RecordMessageProcessed increments the processed-message counter for msgType.
func RecordMessageProcessed(msgType string) {
	messagesProcessed.WithLabelValues(msgType).Inc()
}

// SetActiveConnections sets the current open-connection gauge.
func SetActiveConnections(n int) {
	activeConnections.Set(float64(n))
}

// RecordDBQuery records one Postgres query's latency, labeled by operation
// (e.g. "select", "upsert") and table.
func RecordDBQuery(operation, table string, d time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(d.Seconds())
}

// RecordCacheHit increments the connectivity cache hit counter.
func RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss increments the connectivity cache miss counter.
func RecordCacheMiss() {
	cacheMisses.Inc()
}

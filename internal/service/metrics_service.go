package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a point-in-time view of the counters for the readiness endpoint.
type MetricsSnapshot struct {
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	UpstreamCalls             uint64    `json:"upstream_calls"`
	UpstreamFailures          uint64    `json:"upstream_failures"`
	AverageUpstreamDurationMs float64   `json:"average_upstream_duration_ms"`
	CacheHitRatio             float64   `json:"cache_hit_ratio"`
	BatchesSubmitted          uint64    `json:"batches_submitted"`
	BatchItemsFailed          uint64    `json:"batch_items_failed"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}

// MetricsService owns the Prometheus registry for the gateway.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	batchItems       *prometheus.CounterVec
	batchDuration    prometheus.Observer
	journalDuration  prometheus.Observer

	cacheHitCount         uint64
	cacheMissCount        uint64
	requestCount          uint64
	requestDurationTotal  uint64
	upstreamCount         uint64
	upstreamFailureCount  uint64
	upstreamDurationTotal uint64
	batchCount            uint64
	batchFailedItems      uint64
}

// NewMetricsService registers the gateway collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hrapi_request_duration_seconds",
		Help:    "Duration of calls to the HR API",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	upstreamTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hrapi_requests_total",
		Help: "Calls to the HR API by operation and status; status 0 means no response",
	}, []string{"op", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	batchItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_batch_items_total",
		Help: "Attendance marks sent by batch submissions, by result",
	}, []string{"result"})

	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_batch_duration_seconds",
		Help:    "Wall time for a batch submission to settle",
		Buckets: prometheus.DefBuckets,
	})

	journalDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_journal_write_seconds",
		Help:    "Duration of batch journal inserts",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, upstreamTotal, cacheLatency, cacheWrite,
		cacheHitRatio, cacheHits, cacheMisses, batchItems, batchDuration, journalDuration, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		upstreamTotal:    upstreamTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		batchItems:       batchItems,
		batchDuration:    batchDuration,
		journalDuration:  journalDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveUpstream records one HR API call. It satisfies hrapi.Observer.
func (m *MetricsService) ObserveUpstream(op string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(op).Observe(duration.Seconds())
	m.upstreamTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	atomic.AddUint64(&m.upstreamCount, 1)
	atomic.AddUint64(&m.upstreamDurationTotal, uint64(duration.Nanoseconds()))
	if status == 0 || status >= http.StatusBadRequest {
		atomic.AddUint64(&m.upstreamFailureCount, 1)
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordBatch counts the settled items of one batch submission.
func (m *MetricsService) RecordBatch(succeeded, failed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues("succeeded").Add(float64(succeeded))
	m.batchItems.WithLabelValues("failed").Add(float64(failed))
	m.batchDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.batchCount, 1)
	atomic.AddUint64(&m.batchFailedItems, uint64(failed))
}

// ObserveJournalWrite records batch journal insert timing.
func (m *MetricsService) ObserveJournalWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.journalDuration.Observe(duration.Seconds())
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	upstream := atomic.LoadUint64(&m.upstreamCount)
	upDuration := atomic.LoadUint64(&m.upstreamDurationTotal)

	snap := MetricsSnapshot{
		RequestsTotal:    requests,
		UpstreamCalls:    upstream,
		UpstreamFailures: atomic.LoadUint64(&m.upstreamFailureCount),
		BatchesSubmitted: atomic.LoadUint64(&m.batchCount),
		BatchItemsFailed: atomic.LoadUint64(&m.batchFailedItems),
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
	if total := hits + misses; total > 0 {
		snap.CacheHitRatio = float64(hits) / float64(total)
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	if upstream > 0 {
		snap.AverageUpstreamDurationMs = float64(upDuration) / float64(upstream) / float64(time.Millisecond)
	}
	return snap
}

// Package metrics provides Prometheus metrics for the standings engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Recompute pipeline
	recomputePasses           prometheus.Counter
	recomputeFailures         prometheus.Counter
	recomputeTimeouts         prometheus.Counter
	recomputeRetries          prometheus.Counter
	recomputeRetriesExhausted prometheus.Counter
	triggersCoalesced         prometheus.Counter
	recomputeDuration         prometheus.Histogram

	// Engine inputs
	picksSubmitted       prometheus.Counter
	picksRejected        prometheus.Counter
	resolutionsApplied   prometheus.Counter
	resolutionsDuplicate prometheus.Counter

	// Snapshot publication
	publishLatency      prometheus.Histogram
	mirrorPublishErrors prometheus.Counter

	// Business scale
	seriesTracked       prometheus.Gauge
	participantsTracked prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "betsup",
		subsystem:        "standings",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recomputePasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_passes_total",
		Help:      "Total number of completed recompute passes",
	})
	m.recomputeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_failures_total",
		Help:      "Total number of recompute passes that failed and kept the previous generation",
	})
	m.recomputeTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_timeouts_total",
		Help:      "Total number of recompute passes abandoned at the soft deadline",
	})
	m.recomputeRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_retries_total",
		Help:      "Total number of automatic retries after a recompute timeout",
	})
	m.recomputeRetriesExhausted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_retries_exhausted_total",
		Help:      "Recompute triggers that kept timing out after all retries (standing alert)",
	})
	m.triggersCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "triggers_coalesced_total",
		Help:      "Triggers folded into an already-running pass's follow-up",
	})
	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_duration_milliseconds",
		Help:      "Recompute pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.picksSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_submitted_total",
		Help:      "Total number of accepted pick submissions",
	})
	m.picksRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_rejected_total",
		Help:      "Total number of rejected pick submissions",
	})
	m.resolutionsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolutions_applied_total",
		Help:      "Total number of bet resolutions applied",
	})
	m.resolutionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolutions_duplicate_total",
		Help:      "Total number of duplicate resolution deliveries dropped",
	})

	m.publishLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "publish_latency_milliseconds",
		Help:      "Latency of mirroring a published generation to the standings cache",
		Buckets:   m.histogramBuckets,
	})
	m.mirrorPublishErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mirror_publish_errors_total",
		Help:      "Failed attempts to mirror a generation to the standings cache",
	})

	m.seriesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "series_tracked",
		Help:      "Number of series currently registered",
	})
	m.participantsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_tracked",
		Help:      "Number of participants across all series",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap memory usage in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// Global recording functions operating on the singleton manager.

func RecordRecomputePass() {
	if globalManager.enabled {
		globalManager.recomputePasses.Inc()
	}
}

func RecordRecomputeFailure() {
	if globalManager.enabled {
		globalManager.recomputeFailures.Inc()
	}
}

func RecordRecomputeTimeout() {
	if globalManager.enabled {
		globalManager.recomputeTimeouts.Inc()
	}
}

func RecordRecomputeRetry() {
	if globalManager.enabled {
		globalManager.recomputeRetries.Inc()
	}
}

func RecordRecomputeRetriesExhausted() {
	if globalManager.enabled {
		globalManager.recomputeRetriesExhausted.Inc()
	}
}

func RecordTriggerCoalesced() {
	if globalManager.enabled {
		globalManager.triggersCoalesced.Inc()
	}
}

func RecordRecomputeDuration(ms float64) {
	if globalManager.enabled {
		globalManager.recomputeDuration.Observe(ms)
	}
}

func RecordPickSubmitted() {
	if globalManager.enabled {
		globalManager.picksSubmitted.Inc()
	}
}

func RecordPickRejected() {
	if globalManager.enabled {
		globalManager.picksRejected.Inc()
	}
}

func RecordResolutionApplied() {
	if globalManager.enabled {
		globalManager.resolutionsApplied.Inc()
	}
}

func RecordResolutionDuplicate() {
	if globalManager.enabled {
		globalManager.resolutionsDuplicate.Inc()
	}
}

func RecordPublishLatency(ms float64) {
	if globalManager.enabled {
		globalManager.publishLatency.Observe(ms)
	}
}

func RecordMirrorPublishError() {
	if globalManager.enabled {
		globalManager.mirrorPublishErrors.Inc()
	}
}

func UpdateSeriesTracked(count int) {
	if globalManager.enabled {
		globalManager.seriesTracked.Set(float64(count))
	}
}

func UpdateParticipantsTracked(count int) {
	if globalManager.enabled {
		globalManager.participantsTracked.Set(float64(count))
	}
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
	}
}

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the registry backing the singleton manager for
// exposition via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

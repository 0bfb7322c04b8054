// Package metrics provides Prometheus metrics for the avatar paint service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the paint service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Avatar cache
	captures       *prometheus.CounterVec
	cacheEntries   prometheus.Gauge
	cacheEvictions prometheus.Counter
	cacheForgets   prometheus.Counter

	// Effects
	effectsApplied *prometheus.CounterVec
	routesAborted  *prometheus.CounterVec
	materialWrites prometheus.Counter
	handlerPanics  *prometheus.CounterVec
	components     *prometheus.GaugeVec

	// Dispatch loop
	dispatchLatency prometheus.Histogram
	eventsDelivered *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "avatarpaint",
		subsystem:        "",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		refreshInterval:  defaultRefreshInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.captures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "captures_total",
		Help:        "Material snapshot capture attempts by result (captured, duplicate)",
		ConstLabels: labels,
	}, []string{"result"})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_entries",
		Help:        "Avatars with a captured original material snapshot",
		ConstLabels: labels,
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_evictions_total",
		Help:        "Snapshots evicted because the cache reached its bound",
		ConstLabels: labels,
	})

	m.cacheForgets = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_forgets_total",
		Help:        "Snapshots removed after the avatar left the scene",
		ConstLabels: labels,
	})

	m.effectsApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "effects_applied_total",
		Help:        "Effects pushed to an avatar by effect kind",
		ConstLabels: labels,
	}, []string{"effect"})

	m.routesAborted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "routes_aborted_total",
		Help:        "Trigger events that did not apply an effect, by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.materialWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "material_writes_total",
		Help:        "Material property writes sent to the host",
		ConstLabels: labels,
	})

	m.handlerPanics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "handler_panics_total",
		Help:        "Panics recovered at the event callback boundary",
		ConstLabels: labels,
	}, []string{"handler"})

	m.components = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "components",
		Help:        "Paint components by state (armed, disabled)",
		ConstLabels: labels,
	}, []string{"state"})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dispatch_latency_milliseconds",
		Help:        "Time spent delivering one host event to its handlers",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.eventsDelivered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_delivered_total",
		Help:        "Host events delivered by the dispatch loop, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Host events waiting for dispatch",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum number of queued host events",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_errors_total",
		Help:        "Rejected enqueue attempts by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Ops HTTP requests by endpoint, method and status code",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Ops HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCapture counts a capture attempt; result is "captured" or "duplicate".
func RecordCapture(result string) {
	globalManager.captures.WithLabelValues(result).Inc()
}

// UpdateCacheEntries sets the number of cached snapshots.
func UpdateCacheEntries(n int64) {
	globalManager.cacheEntries.Set(float64(n))
}

// RecordCacheEviction counts a bound-driven eviction.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// RecordCacheForget counts a leave-driven removal.
func RecordCacheForget() {
	globalManager.cacheForgets.Inc()
}

// RecordEffectApplied counts an applied effect.
func RecordEffectApplied(effect string) {
	globalManager.effectsApplied.WithLabelValues(effect).Inc()
}

// RecordRouteAborted counts a trigger event that stopped before applying.
func RecordRouteAborted(outcome string) {
	globalManager.routesAborted.WithLabelValues(outcome).Inc()
}

// RecordMaterialWrites adds n material writes.
func RecordMaterialWrites(n int) {
	globalManager.materialWrites.Add(float64(n))
}

// RecordHandlerPanic counts a recovered panic in the named handler.
func RecordHandlerPanic(handler string) {
	globalManager.handlerPanics.WithLabelValues(handler).Inc()
}

// UpdateComponents sets the number of components in the given state.
func UpdateComponents(state string, n int) {
	globalManager.components.WithLabelValues(state).Set(float64(n))
}

// RecordDispatchLatency records how long one event delivery took.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordEventDelivered counts a delivered host event.
func RecordEventDelivered(kind string) {
	globalManager.eventsDelivered.WithLabelValues(kind).Inc()
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RefreshInterval reports how often the global manager's gauges should be
// polled.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

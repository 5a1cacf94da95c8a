package metrics

import (
	"strconv"
	"sync"
	"time"

	"mercator-hq/jimmybridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// maxEndpointCardinality bounds the distinct endpoint labels. Unknown paths
// are already folded by the router, so this only guards misconfiguration.
const maxEndpointCardinality = 64

// Collector is the main orchestrator for all Prometheus metrics in jimmybridge.
// It manages metric registration and provides a unified interface for
// recording metrics from the HTTP layer, the upstream client path and the
// stream transcoder.
//
// All methods are safe on a nil *Collector and on a disabled one, so
// components can record unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	streamMetrics   *StreamMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created with
// the Go runtime and process collectors already registered.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "jimmybridge",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(maxEndpointCardinality),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.streamMetrics = NewStreamMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records metrics for a completed HTTP request.
//
// Parameters:
//   - endpoint: Route pattern (e.g., "/v1/chat/completions")
//   - status: HTTP status code written
//   - stream: Whether the response was an SSE stream
//   - duration: Total request duration
func (c *Collector) RecordRequest(endpoint string, status int, stream bool, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow(endpoint) {
		endpoint = "other"
	}

	c.requestMetrics.RecordRequest(endpoint, strconv.Itoa(status), strconv.FormatBool(stream), duration)
}

// RecordUpstream records the outcome of one upstream call.
//
// Parameters:
//   - outcome: "ok", "unreachable", "rejected", "empty", "stream_error",
//     "timeout" or "canceled"
//   - latency: Time until response headers arrived; zero if none did
func (c *Collector) RecordUpstream(outcome string, latency time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordCall(outcome, latency)
}

// UpdateUpstreamHealth updates the upstream health gauge (1=healthy, 0=unhealthy).
func (c *Collector) UpdateUpstreamHealth(healthy bool) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.UpdateHealth(healthy)
}

// StreamStarted increments the active stream gauge.
func (c *Collector) StreamStarted() {
	if !c.enabled() {
		return
	}

	c.streamMetrics.activeStreams.Inc()
}

// StreamFinished decrements the active stream gauge.
func (c *Collector) StreamFinished() {
	if !c.enabled() {
		return
	}

	c.streamMetrics.activeStreams.Dec()
}

// RecordFrame records one emitted SSE frame.
//
// Parameters:
//   - kind: Frame kind ("role", "content", "finish", "done", "error")
//   - contentBytes: Bytes of visible text carried by the frame
func (c *Collector) RecordFrame(kind string, contentBytes int) {
	if !c.enabled() {
		return
	}

	c.streamMetrics.RecordFrame(kind, contentBytes)
}

// RecordStatsTrailer records a response whose stats trailer was removed.
func (c *Collector) RecordStatsTrailer() {
	if !c.enabled() {
		return
	}

	c.streamMetrics.statsTrailers.Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

package metrics

import (
	"time"

	"mercator-hq/jimmybridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the upstream chat service.
//
// Metrics:
//   - jimmybridge_upstream_requests_total: Upstream calls by outcome
//   - jimmybridge_upstream_latency_seconds: Time to response headers
//   - jimmybridge_upstream_healthy: Upstream health (1=healthy, 0=unhealthy)
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	health   prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls by outcome",
			},
			[]string{"outcome"},
		),

		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Time from sending the upstream request to its response headers",
				Buckets:   cfg.RequestDurationBuckets,
			},
		),

		health: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_healthy",
				Help:      "Upstream health status (1=healthy, 0=unhealthy)",
			},
		),
	}

	um.health.Set(1)

	registry.MustRegister(
		um.requests,
		um.latency,
		um.health,
	)

	return um
}

// RecordCall records one upstream call. Latency is observed only when
// response headers were received.
func (um *UpstreamMetrics) RecordCall(outcome string, latency time.Duration) {
	um.requests.WithLabelValues(outcome).Inc()
	if latency > 0 {
		um.latency.Observe(latency.Seconds())
	}
}

// UpdateHealth sets the health gauge.
func (um *UpstreamMetrics) UpdateHealth(healthy bool) {
	if healthy {
		um.health.Set(1)
	} else {
		um.health.Set(0)
	}
}

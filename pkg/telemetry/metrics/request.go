package metrics

import (
	"time"

	"mercator-hq/jimmybridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound HTTP requests.
//
// Metrics:
//   - jimmybridge_requests_total: Request count by endpoint, status, stream
//   - jimmybridge_request_duration_seconds: Request duration histogram
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"endpoint", "status", "stream"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds, including streamed bodies",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"endpoint", "stream"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
	)

	return rm
}

// RecordRequest records one completed request.
func (rm *RequestMetrics) RecordRequest(endpoint, status, stream string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(endpoint, status, stream).Inc()
	rm.requestDuration.WithLabelValues(endpoint, stream).Observe(duration.Seconds())
}

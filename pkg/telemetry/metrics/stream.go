package metrics

import (
	"mercator-hq/jimmybridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks SSE output of the stream transcoder.
//
// Metrics:
//   - jimmybridge_stream_frames_total: Frames written by kind
//   - jimmybridge_stream_bytes_total: Visible text bytes written
//   - jimmybridge_stats_trailers_total: Responses whose stats trailer was removed
//   - jimmybridge_active_streams: Streams currently open
type StreamMetrics struct {
	framesTotal   *prometheus.CounterVec
	bytesTotal    prometheus.Counter
	statsTrailers prometheus.Counter
	activeStreams prometheus.Gauge
}

// NewStreamMetrics creates and registers stream metrics with the provided registry.
func NewStreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_frames_total",
				Help:      "Total number of SSE frames written by kind",
			},
			[]string{"kind"},
		),

		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_bytes_total",
				Help:      "Total bytes of visible text written in content frames",
			},
		),

		statsTrailers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stats_trailers_total",
				Help:      "Total number of responses whose stats trailer was removed",
			},
		),

		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of SSE streams currently open",
			},
		),
	}

	registry.MustRegister(
		sm.framesTotal,
		sm.bytesTotal,
		sm.statsTrailers,
		sm.activeStreams,
	)

	return sm
}

// RecordFrame records one frame and the text bytes it carried.
func (sm *StreamMetrics) RecordFrame(kind string, contentBytes int) {
	sm.framesTotal.WithLabelValues(kind).Inc()
	if contentBytes > 0 {
		sm.bytesTotal.Add(float64(contentBytes))
	}
}

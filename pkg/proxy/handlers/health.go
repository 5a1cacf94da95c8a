package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/upstream"
)

// Health status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp int64           `json:"timestamp"`
	Upstream  upstream.Health `json:"upstream"`
}

// HealthReporter exposes a snapshot of upstream call outcomes.
type HealthReporter interface {
	Health() upstream.Health
}

// HealthHandler handles liveness checks. It always answers 200. The status
// field turns "degraded" once the upstream is marked unhealthy.
type HealthHandler struct {
	reporter HealthReporter
	now      func() time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(reporter HealthReporter) *HealthHandler {
	return &HealthHandler{
		reporter: reporter,
		now:      time.Now,
	}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.reporter.Health()

	status := StatusOK
	if !health.IsHealthy {
		status = StatusDegraded
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: h.now().Unix(),
		Upstream:  health,
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, response); err != nil {
		slog.ErrorContext(r.Context(), "failed to write health response", "error", err)
	}
}

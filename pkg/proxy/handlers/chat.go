package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/telemetry/logging"
	"mercator-hq/jimmybridge/pkg/telemetry/metrics"
	"mercator-hq/jimmybridge/pkg/telemetry/tracing"
	"mercator-hq/jimmybridge/pkg/transcoder"
	"mercator-hq/jimmybridge/pkg/upstream"

	"go.opentelemetry.io/otel/trace"
)

// frameKindError labels SSE error events in metrics.
const frameKindError = "error"

// ChatConfig configures the chat completion handler.
type ChatConfig struct {
	// DefaultModel is echoed when the request names no model.
	DefaultModel string

	// TopK is forwarded in every upstream request.
	TopK int

	// CompletionTimeout bounds a non-streaming completion end to end.
	// Zero disables it. Streams are never given a deadline.
	CompletionTimeout time.Duration

	// MaxResponseBytes bounds a buffered upstream response.
	MaxResponseBytes int
}

// ChatHandler serves POST /v1/chat/completions.
type ChatHandler struct {
	upstream Upstream
	metrics  *metrics.Collector
	config   ChatConfig
}

// NewChatHandler creates a new chat handler. collector may be nil.
func NewChatHandler(up Upstream, collector *metrics.Collector, config ChatConfig) *ChatHandler {
	if config.DefaultModel == "" {
		config.DefaultModel = upstream.DefaultModel
	}
	if config.TopK <= 0 {
		config.TopK = upstream.DefaultTopK
	}
	return &ChatHandler{
		upstream: up,
		metrics:  collector,
		config:   config,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatReq, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "rejected chat completion request", "error", err)
		h.writeError(ctx, w, err)
		return
	}

	model := proxy.ResolveModel(chatReq.Model, h.config.DefaultModel)
	ctx = logging.WithModel(ctx, model)

	// The envelope is fixed before the upstream call so every frame shares it.
	env := proxy.NewEnvelope(model, time.Now())
	upstreamReq := proxy.BuildUpstreamRequest(chatReq, model, h.config.TopK)

	ctx, span := tracing.StartSpan(ctx, "chat.completion")
	defer span.End()
	tracing.SetCompletionAttributes(span, env.ID, model, chatReq.Stream, len(upstreamReq.Messages))

	slog.InfoContext(ctx, "processing chat completion request",
		"completion_id", env.ID,
		"stream", chatReq.Stream,
		"messages", len(upstreamReq.Messages),
		"system_prompt", upstreamReq.ChatOptions.SystemPrompt != "",
		"user", chatReq.User,
	)

	if chatReq.Stream {
		h.serveStream(ctx, w, env, upstreamReq)
		return
	}
	h.serveCompletion(ctx, w, env, upstreamReq)
}

// serveCompletion buffers the whole upstream response and answers with a
// single chat.completion object.
func (h *ChatHandler) serveCompletion(ctx context.Context, w http.ResponseWriter, env *proxy.Envelope, upstreamReq *upstream.Request) {
	startTime := time.Now()

	if h.config.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.CompletionTimeout)
		defer cancel()
	}

	body, latency, err := h.call(ctx, upstreamReq)
	if err != nil {
		h.fail(ctx, w, err, latency)
		return
	}

	acc := &transcoder.Accumulator{MaxBytes: h.config.MaxResponseBytes}
	result, err := acc.Accumulate(ctx, body)
	if err != nil {
		h.fail(ctx, w, err, latency)
		return
	}

	h.recordUpstream(ctx, nil, latency)
	if result.Stats.TrailerDetected {
		h.metrics.RecordStatsTrailer()
	}
	tracing.SetResultAttributes(trace.SpanFromContext(ctx), proxy.Outcome(nil), 0,
		result.Stats.ChunksRead, result.Stats.BytesEmitted, result.Stats.TrailerDetected)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, env.Completion(result.Content)); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
		return
	}

	slog.InfoContext(ctx, "chat completion finished",
		"completion_id", env.ID,
		"chunks_read", result.Stats.ChunksRead,
		"content_bytes", result.Stats.BytesEmitted,
		"trailer_stripped", result.Stats.TrailerDetected,
		"upstream_latency_ms", latency.Milliseconds(),
		"total_latency_ms", time.Since(startTime).Milliseconds(),
	)
}

// serveStream relays the transcoder's frames as Server-Sent Events.
//
// Failures before the first frame are answered with a JSON error. Once the
// stream has started, a mid-stream upstream failure ends it with a single
// SSE error event and no [DONE], so clients can tell it was cut short.
func (h *ChatHandler) serveStream(ctx context.Context, w http.ResponseWriter, env *proxy.Envelope, upstreamReq *upstream.Request) {
	startTime := time.Now()

	body, latency, err := h.call(ctx, upstreamReq)
	if err != nil {
		h.fail(ctx, w, err, latency)
		return
	}

	h.metrics.StreamStarted()
	defer h.metrics.StreamFinished()

	t := transcoder.NewTranscoder(body)
	defer t.Close()

	proxy.SetSSEHeaders(w)

	var (
		framesSent int
		streamErr  error
		clientGone bool
	)
	for {
		frame, err := t.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}

		if err := proxy.WriteFrame(w, env, frame); err != nil {
			slog.DebugContext(ctx, "failed to write SSE frame", "error", err)
			clientGone = true
			break
		}
		framesSent++
		h.metrics.RecordFrame(frame.Kind.String(), len(frame.Content))
	}

	stats := t.Stats()
	if stats.TrailerDetected {
		h.metrics.RecordStatsTrailer()
	}
	defer func() {
		tracing.SetResultAttributes(trace.SpanFromContext(ctx), proxy.Outcome(streamErr), framesSent,
			stats.ChunksRead, stats.BytesEmitted, stats.TrailerDetected)
	}()

	logAttrs := []any{
		"completion_id", env.ID,
		"frames_sent", framesSent,
		"chunks_read", stats.ChunksRead,
		"content_bytes", stats.BytesEmitted,
		"trailer_stripped", stats.TrailerDetected,
		"upstream_latency_ms", latency.Milliseconds(),
		"total_latency_ms", time.Since(startTime).Milliseconds(),
	}

	switch {
	case clientGone || errors.Is(streamErr, context.Canceled):
		streamErr = context.Canceled
		h.recordUpstream(ctx, streamErr, latency)
		slog.InfoContext(ctx, "client disconnected during streaming", logAttrs...)

	case streamErr != nil:
		h.recordUpstream(ctx, streamErr, latency)
		slog.WarnContext(ctx, "upstream stream interrupted", append(logAttrs, "error", streamErr)...)

		if err := proxy.WriteSSEError(w, proxy.HandleError(streamErr)); err != nil {
			slog.DebugContext(ctx, "failed to write SSE error", "error", err)
			return
		}
		h.metrics.RecordFrame(frameKindError, 0)

	default:
		h.recordUpstream(ctx, nil, latency)
		slog.InfoContext(ctx, "streaming chat completion finished", logAttrs...)
	}
}

// call sends the upstream request. The returned latency is the time until
// response headers arrived, or zero if the upstream was never reached.
func (h *ChatHandler) call(ctx context.Context, upstreamReq *upstream.Request) (*upstream.BodyReader, time.Duration, error) {
	spanCtx, span := tracing.StartSpan(ctx, "upstream.chat", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	startTime := time.Now()
	body, err := h.upstream.Chat(spanCtx, upstreamReq)
	latency := time.Since(startTime)

	span.SetAttributes(tracing.AttrUpstreamOutcome.String(proxy.Outcome(err)))
	tracing.SetStatus(span, err)

	var unreachable *upstream.UnreachableError
	if errors.As(err, &unreachable) {
		latency = 0
	}
	h.metrics.UpdateUpstreamHealth(h.upstream.Health().IsHealthy)

	return body, latency, err
}

// fail records a failed exchange and reports it to the client, unless the
// client has already gone away.
func (h *ChatHandler) fail(ctx context.Context, w http.ResponseWriter, err error, latency time.Duration) {
	h.recordUpstream(ctx, err, latency)

	if errors.Is(err, context.Canceled) {
		slog.InfoContext(ctx, "client disconnected before completion", "error", err)
		return
	}

	slog.ErrorContext(ctx, "upstream request failed",
		"outcome", proxy.Outcome(err),
		"upstream_latency_ms", latency.Milliseconds(),
		"error", err,
	)
	h.writeError(ctx, w, err)
}

// recordUpstream records the exchange outcome in metrics and on the
// completion span. A client that went away does not fail the span.
func (h *ChatHandler) recordUpstream(ctx context.Context, err error, latency time.Duration) {
	outcome := proxy.Outcome(err)
	h.metrics.RecordUpstream(outcome, latency)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(tracing.AttrUpstreamOutcome.String(outcome))
	if !errors.Is(err, context.Canceled) {
		tracing.SetStatus(span, err)
	}
}

func (h *ChatHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if err := proxy.WriteErrorResponse(w, proxy.HandleError(err)); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

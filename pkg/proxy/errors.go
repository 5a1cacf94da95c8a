package proxy

import (
	"context"
	"errors"

	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/upstream"
)

// Client-facing messages for upstream failures.
const (
	MessageUpstreamUnreachable = "Failed to connect to upstream"
	MessageUpstreamRejected    = "Upstream error"
	MessageUpstreamEmpty       = "Empty upstream response"
	MessageUpstreamInterrupted = "Upstream stream interrupted"
	MessageUpstreamTimeout     = "Upstream request timed out"
	MessageInternalError       = "An internal error occurred. Please try again later."
)

// HandleError converts various error types to OpenAI-compatible error responses.
// Validation failures map to 400, upstream failures to 502, an exceeded
// completion deadline to 504, and anything else to 500.
//
// Example usage:
//
//	if err != nil {
//	    WriteErrorResponse(w, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	// Checked first: an expired deadline also surfaces wrapped in the
	// upstream error types.
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewUpstreamTimeoutError(MessageUpstreamTimeout)
	}

	var unreachableErr *upstream.UnreachableError
	if errors.As(err, &unreachableErr) {
		return types.NewUpstreamError(MessageUpstreamUnreachable)
	}

	var rejectedErr *upstream.RejectedError
	if errors.As(err, &rejectedErr) {
		return types.NewUpstreamError(MessageUpstreamRejected)
	}

	var emptyErr *upstream.EmptyResponseError
	if errors.As(err, &emptyErr) {
		return types.NewUpstreamError(MessageUpstreamEmpty)
	}

	var streamErr *upstream.StreamError
	if errors.As(err, &streamErr) {
		return types.NewUpstreamError(MessageUpstreamInterrupted)
	}

	return types.NewServerError(MessageInternalError)
}

// Outcome classifies err for metrics and logs: "ok", "unreachable",
// "rejected", "empty", "stream_error", "timeout", "canceled" or "error".
func Outcome(err error) string {
	var (
		unreachableErr *upstream.UnreachableError
		rejectedErr    *upstream.RejectedError
		emptyErr       *upstream.EmptyResponseError
		streamErr      *upstream.StreamError
	)

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &streamErr):
		// An idle timeout cancels the upstream request internally, so this
		// must be classified before plain cancellation.
		return "stream_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &unreachableErr):
		return "unreachable"
	case errors.As(err, &rejectedErr):
		return "rejected"
	case errors.As(err, &emptyErr):
		return "empty"
	default:
		return "error"
	}
}

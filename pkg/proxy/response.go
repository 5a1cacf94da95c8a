package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/transcoder"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an OpenAI-compatible error response with the
// status carried by errResp.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.StatusCode(), errResp)
}

// WriteFrame writes one transcoder frame as an SSE event.
func WriteFrame(w http.ResponseWriter, env *Envelope, frame transcoder.Frame) error {
	if frame.Kind == transcoder.FrameDone {
		return WriteSSEDone(w)
	}
	return WriteSSEChunk(w, env.Chunk(frame))
}

// WriteSSEChunk writes a single chunk in Server-Sent Events format.
// Each chunk is formatted as:
//
//	data: {"id":"chatcmpl-123","object":"chat.completion.chunk",...}
//
// Followed by two newlines (\n\n).
func WriteSSEChunk(w http.ResponseWriter, chunk *types.ChatCompletionStreamChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE chunk: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE chunk: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEDone writes the final "[DONE]" marker for SSE streams.
func WriteSSEDone(w http.ResponseWriter) error {
	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write SSE done marker: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEError writes an error event in place of the remaining frames of a
// stream that cannot be completed.
func WriteSSEError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	data, err := json.Marshal(errResp)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE error: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE error: %w", err)
	}

	flush(w)
	return nil
}

// SetSSEHeaders sets the appropriate headers for Server-Sent Events streaming.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disables response buffering in nginx-style reverse proxies.
	w.Header().Set("X-Accel-Buffering", "no")
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

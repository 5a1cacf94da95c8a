package upstream

import "fmt"

// UnreachableError is returned when the request could not be delivered or no
// response headers arrived.
type UnreachableError struct {
	// URL is the upstream endpoint that was called.
	URL string

	// Cause is the transport error.
	Cause error
}

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("upstream %s unreachable: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// RejectedError is returned when the upstream answers with a non-2xx status.
type RejectedError struct {
	// StatusCode is the HTTP status returned by the upstream.
	StatusCode int

	// Body holds the start of the response body, for logging only.
	Body string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream rejected request (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream rejected request (status %d)", e.StatusCode)
}

// EmptyResponseError is returned when the upstream answers 2xx with no body.
type EmptyResponseError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("upstream returned empty response (status %d)", e.StatusCode)
}

// StreamError is returned when reading the response body fails after the
// stream has started.
type StreamError struct {
	// Message describes what went wrong.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream stream error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream stream error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

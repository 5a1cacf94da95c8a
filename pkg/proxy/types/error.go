package types

import "net/http"

// ErrorResponse represents an OpenAI-compatible error response.
// This is returned for all error conditions to ensure compatibility with
// OpenAI SDKs and tools.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`

	// status overrides the status derived from the error type.
	status int
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error ("invalid_request_error" or "server_error").
	Type string `json:"type"`

	// Param is the name of the parameter that caused the error (if applicable).
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants used by the OpenAI API.
const (
	// ErrorTypeInvalidRequest indicates a client-side error.
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeServerError indicates a failure on the proxy or upstream side.
	ErrorTypeServerError = "server_error"
)

// Error code constants for common error scenarios.
const (
	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidValue indicates a field has an invalid value.
	CodeInvalidValue = "invalid_value"

	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"

	// CodeInvalidAPIKey indicates a missing or wrong bearer token.
	CodeInvalidAPIKey = "invalid_api_key"

	// CodeUnknownURL indicates a request for a route that does not exist.
	CodeUnknownURL = "unknown_url"

	// CodeMethodNotAllowed indicates a known route called with the wrong method.
	CodeMethodNotAllowed = "method_not_allowed"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// WithStatus sets the HTTP status explicitly and returns e.
func (e *ErrorResponse) WithStatus(status int) *ErrorResponse {
	e.status = status
	return e
}

// StatusCode returns the HTTP status to send with the error.
func (e *ErrorResponse) StatusCode() int {
	if e.status != 0 {
		return e.status
	}
	return e.Error.HTTPStatusCode()
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewAuthenticationError creates an error response for a rejected bearer
// token (401).
func NewAuthenticationError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, "", CodeInvalidAPIKey).
		WithStatus(http.StatusUnauthorized)
}

// NewNotFoundError creates an error response for unknown routes (404).
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, "", CodeUnknownURL).
		WithStatus(http.StatusNotFound)
}

// NewMethodNotAllowedError creates an error response for a known route
// called with the wrong method (405).
func NewMethodNotAllowedError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, "", CodeMethodNotAllowed).
		WithStatus(http.StatusMethodNotAllowed)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewUpstreamError creates an error response for upstream failures (502).
// It carries no param or code, matching what clients of the upstream saw.
func NewUpstreamError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", "").
		WithStatus(http.StatusBadGateway)
}

// NewUpstreamTimeoutError creates an error response for a completion that
// exceeded its deadline (504).
func NewUpstreamTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", "").
		WithStatus(http.StatusGatewayTimeout)
}

// HTTPStatusCode returns the default HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		if e.Code == CodeRequestTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case ErrorTypeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mercator-hq/jimmybridge/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// AuthorizationHeader is the HTTP header for API key authentication.
	AuthorizationHeader = "Authorization"
)

// ParseChatCompletionRequest parses an HTTP request body into a ChatCompletionRequest.
// It validates the JSON format, enforces size limits, and validates required fields.
//
// Every failure is returned as *RequestError so that it maps to a 400 (or 413
// for oversized bodies) instead of reaching the upstream.
func ParseChatCompletionRequest(r *http.Request) (*types.ChatCompletionRequest, error) {
	// One extra byte tells an exactly-full body apart from an oversized one.
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("failed to read request body: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, decodeError(err)
	}

	if err := req.Validate(); err != nil {
		var valErr *types.ValidationError
		if errors.As(err, &valErr) {
			code := types.CodeInvalidValue
			if valErr.Missing {
				code = types.CodeMissingField
			}
			return nil, &RequestError{
				Message: valErr.Message,
				Code:    code,
				Param:   valErr.Field,
			}
		}
		return nil, err
	}

	return &req, nil
}

// decodeError turns a JSON decoding failure into a RequestError, naming the
// offending field when the decoder reports one.
func decodeError(err error) *RequestError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &RequestError{
			Message: fmt.Sprintf("invalid type for %s: expected %s", field, typeErr.Type),
			Code:    types.CodeInvalidValue,
			Param:   field,
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) || strings.Contains(err.Error(), "unexpected end of JSON input") {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	// Errors from custom decoders, e.g. unsupported content parts.
	return &RequestError{
		Message: fmt.Sprintf("invalid request body: %v", err),
		Code:    types.CodeInvalidValue,
		Param:   "body",
	}
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively. If the header is missing
// or malformed, an empty string is returned.
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an OpenAI-compatible error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}

package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/upstream"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantType    string
		wantMessage string
	}{
		{
			name:        "request error",
			err:         &RequestError{Message: "bad", Code: types.CodeInvalidValue, Param: "n"},
			wantStatus:  http.StatusBadRequest,
			wantType:    types.ErrorTypeInvalidRequest,
			wantMessage: "bad",
		},
		{
			name:        "unreachable",
			err:         &upstream.UnreachableError{URL: "http://x", Cause: errors.New("refused")},
			wantStatus:  http.StatusBadGateway,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageUpstreamUnreachable,
		},
		{
			name:        "rejected",
			err:         &upstream.RejectedError{StatusCode: 503, Body: "busy"},
			wantStatus:  http.StatusBadGateway,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageUpstreamRejected,
		},
		{
			name:        "empty",
			err:         &upstream.EmptyResponseError{StatusCode: 200},
			wantStatus:  http.StatusBadGateway,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageUpstreamEmpty,
		},
		{
			name:        "stream error",
			err:         fmt.Errorf("accumulate: %w", &upstream.StreamError{Message: "reset"}),
			wantStatus:  http.StatusBadGateway,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageUpstreamInterrupted,
		},
		{
			name:        "deadline exceeded",
			err:         &upstream.UnreachableError{URL: "http://x", Cause: context.DeadlineExceeded},
			wantStatus:  http.StatusGatewayTimeout,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageUpstreamTimeout,
		},
		{
			name:        "unknown",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    types.ErrorTypeServerError,
			wantMessage: MessageInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := HandleError(tt.err)

			if resp.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode())
			}
			if resp.Error.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, resp.Error.Type)
			}
			if resp.Error.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&upstream.UnreachableError{Cause: errors.New("x")}, "unreachable"},
		{&upstream.RejectedError{StatusCode: 500}, "rejected"},
		{&upstream.EmptyResponseError{StatusCode: 204}, "empty"},
		{&upstream.StreamError{Message: "idle", Cause: context.Canceled}, "stream_error"},
		{context.Canceled, "canceled"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("other"), "error"},
	}

	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v): expected %q, got %q", tt.err, tt.want, got)
		}
	}
}

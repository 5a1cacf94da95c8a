package upstream_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/jimmybridge/internal/upstreamtest"
	"mercator-hq/jimmybridge/pkg/upstream"
)

func newTestClient(url string) *upstream.Client {
	cfg := upstream.DefaultConfig()
	cfg.URL = url
	cfg.ConnectTimeout = time.Second
	cfg.ResponseHeaderTimeout = 2 * time.Second
	cfg.IdleChunkTimeout = 0
	return upstream.NewClient(cfg)
}

func readAll(t *testing.T, r *upstream.BodyReader) (string, error) {
	t.Helper()
	var sb strings.Builder
	for {
		text, err := r.Read(context.Background())
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(text)
	}
}

func TestClient_Chat_SendsUpstreamShape(t *testing.T) {
	srv := upstreamtest.NewServer(upstreamtest.Response{Chunks: []string{"ok"}})
	defer srv.Close()

	client := newTestClient(srv.URL())
	defer client.Close()

	req := &upstream.Request{
		Messages: []upstream.Message{{Role: upstream.RoleUser, Content: "Hi"}},
		ChatOptions: upstream.ChatOptions{
			SelectedModel: upstream.DefaultModel,
			SystemPrompt:  "Be terse",
			TopK:          upstream.DefaultTopK,
		},
	}

	body, err := client.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	defer body.Close()

	text, err := readAll(t, body)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if text != "ok" {
		t.Errorf("expected %q, got %q", "ok", text)
	}

	requests := srv.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 upstream request, got %d", len(requests))
	}
	got := requests[0]
	if got.ChatOptions.SystemPrompt != "Be terse" {
		t.Errorf("expected system prompt %q, got %q", "Be terse", got.ChatOptions.SystemPrompt)
	}
	if got.ChatOptions.TopK != 8 {
		t.Errorf("expected topK 8, got %d", got.ChatOptions.TopK)
	}
	if got.Attachment != nil {
		t.Errorf("expected null attachment, got %+v", got.Attachment)
	}

	headers := srv.LastHeaders()
	if ct := headers.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
	if ua := headers.Get("User-Agent"); ua != "jimmybridge" {
		t.Errorf("expected User-Agent jimmybridge, got %q", ua)
	}
}

func TestClient_Chat_AttachmentSerializesAsNull(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies <- string(raw)
		_, _ = io.WriteString(w, "x")
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	body, err := client.Chat(context.Background(), &upstream.Request{Messages: []upstream.Message{}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	body.Close()

	captured := <-bodies
	if !strings.Contains(captured, `"attachment":null`) {
		t.Errorf("expected attachment null in body, got %s", captured)
	}
	if !strings.Contains(captured, `"messages":[]`) {
		t.Errorf("expected empty messages array in body, got %s", captured)
	}
}

func TestClient_Chat_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response upstreamtest.Response
		check    func(t *testing.T, err error)
	}{
		{
			name:     "non-success status",
			response: upstreamtest.Response{Status: http.StatusServiceUnavailable, Chunks: []string{"overloaded"}},
			check: func(t *testing.T, err error) {
				var rejected *upstream.RejectedError
				if !errors.As(err, &rejected) {
					t.Fatalf("expected RejectedError, got %T: %v", err, err)
				}
				if rejected.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("expected status 503, got %d", rejected.StatusCode)
				}
				if rejected.Body != "overloaded" {
					t.Errorf("expected body %q, got %q", "overloaded", rejected.Body)
				}
			},
		},
		{
			name:     "empty body",
			response: upstreamtest.Response{Empty: true},
			check: func(t *testing.T, err error) {
				var empty *upstream.EmptyResponseError
				if !errors.As(err, &empty) {
					t.Fatalf("expected EmptyResponseError, got %T: %v", err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstreamtest.NewServer(tt.response)
			defer srv.Close()

			client := newTestClient(srv.URL())
			body, err := client.Chat(context.Background(), &upstream.Request{})
			if body != nil {
				body.Close()
				t.Fatal("expected nil body on error")
			}
			tt.check(t, err)

			health := client.Health()
			if health.FailedRequests != 1 {
				t.Errorf("expected 1 failed request, got %d", health.FailedRequests)
			}
		})
	}
}

func TestClient_Chat_Unreachable(t *testing.T) {
	srv := upstreamtest.NewServer(upstreamtest.Response{})
	url := srv.URL()
	srv.Close()

	client := newTestClient(url)
	_, err := client.Chat(context.Background(), &upstream.Request{})

	var unreachable *upstream.UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %T: %v", err, err)
	}
	if unreachable.URL != url {
		t.Errorf("expected URL %q, got %q", url, unreachable.URL)
	}
}

func TestClient_Health_MarksUnhealthyAfterThreeFailures(t *testing.T) {
	srv := upstreamtest.NewServer(upstreamtest.Response{Status: http.StatusBadGateway})
	defer srv.Close()

	client := newTestClient(srv.URL())
	for i := 0; i < 3; i++ {
		_, _ = client.Chat(context.Background(), &upstream.Request{})
	}

	health := client.Health()
	if health.IsHealthy {
		t.Error("expected upstream to be marked unhealthy")
	}
	if health.ConsecutiveFailures != 3 {
		t.Errorf("expected 3 consecutive failures, got %d", health.ConsecutiveFailures)
	}

	srv.SetResponse(upstreamtest.Response{Chunks: []string{"back"}})
	body, err := client.Chat(context.Background(), &upstream.Request{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	body.Close()

	health = client.Health()
	if !health.IsHealthy {
		t.Error("expected upstream to recover after a success")
	}
	if health.TotalRequests != 4 {
		t.Errorf("expected 4 total requests, got %d", health.TotalRequests)
	}
}

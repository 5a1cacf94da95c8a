package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMessageContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantText    string
		wantPresent bool
		wantErr     bool
	}{
		{name: "string", input: `"hello"`, wantText: "hello", wantPresent: true},
		{name: "empty string", input: `""`, wantText: "", wantPresent: true},
		{name: "null", input: `null`, wantText: "", wantPresent: false},
		{
			name:        "text parts",
			input:       `[{"type":"text","text":"Hello, "},{"type":"text","text":"world"}]`,
			wantText:    "Hello, world",
			wantPresent: true,
		},
		{name: "image part", input: `[{"type":"image_url","image_url":{"url":"x"}}]`, wantErr: true},
		{name: "part without text", input: `[{"type":"text"}]`, wantErr: true},
		{name: "number", input: `42`, wantErr: true},
		{name: "object", input: `{"text":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c MessageContent
			err := json.Unmarshal([]byte(tt.input), &c)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Text != tt.wantText {
				t.Errorf("expected %q, got %q", tt.wantText, c.Text)
			}
			if c.Present() != tt.wantPresent {
				t.Errorf("expected present %v, got %v", tt.wantPresent, c.Present())
			}
		})
	}
}

func TestMessageContent_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleAssistant, Content: NewMessageContent("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"role":"assistant","content":"hi"}` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestStopSequences_UnmarshalJSON(t *testing.T) {
	var req ChatCompletionRequest
	if err := json.Unmarshal([]byte(`{"stop":"END"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Stop) != 1 || req.Stop[0] != "END" {
		t.Errorf("expected [END], got %v", req.Stop)
	}

	if err := json.Unmarshal([]byte(`{"stop":["a","b"]}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Stop) != 2 {
		t.Errorf("expected 2 stop sequences, got %v", req.Stop)
	}

	if err := json.Unmarshal([]byte(`{"stop":7}`), &req); err == nil {
		t.Error("expected error for numeric stop")
	}
}

func TestChatCompletionRequest_Validate(t *testing.T) {
	floatPtr := func(f float64) *float64 { return &f }
	intPtr := func(i int) *int { return &i }
	user := Message{Role: RoleUser, Content: NewMessageContent("Hi")}

	tests := []struct {
		name      string
		req       ChatCompletionRequest
		wantField string
	}{
		{
			name: "valid minimal",
			req:  ChatCompletionRequest{Messages: []Message{user}},
		},
		{
			name: "valid with sampling",
			req: ChatCompletionRequest{
				Model:       "llama3.1-8B",
				Messages:    []Message{{Role: RoleSystem, Content: NewMessageContent("Be terse")}, user},
				Temperature: floatPtr(0.7),
				TopP:        floatPtr(0.9),
				MaxTokens:   intPtr(256),
				N:           intPtr(1),
			},
		},
		{
			name:      "missing messages",
			req:       ChatCompletionRequest{},
			wantField: "messages",
		},
		{
			name:      "unknown role",
			req:       ChatCompletionRequest{Messages: []Message{{Role: "tool", Content: NewMessageContent("x")}}},
			wantField: "messages[0].role",
		},
		{
			name:      "missing role",
			req:       ChatCompletionRequest{Messages: []Message{user, {Content: NewMessageContent("x")}}},
			wantField: "messages[1].role",
		},
		{
			name:      "missing content",
			req:       ChatCompletionRequest{Messages: []Message{{Role: RoleUser}}},
			wantField: "messages[0].content",
		},
		{
			name:      "temperature out of range",
			req:       ChatCompletionRequest{Messages: []Message{user}, Temperature: floatPtr(2.5)},
			wantField: "temperature",
		},
		{
			name:      "top_p out of range",
			req:       ChatCompletionRequest{Messages: []Message{user}, TopP: floatPtr(-0.1)},
			wantField: "top_p",
		},
		{
			name:      "max_tokens zero",
			req:       ChatCompletionRequest{Messages: []Message{user}, MaxTokens: intPtr(0)},
			wantField: "max_tokens",
		},
		{
			name:      "n greater than one",
			req:       ChatCompletionRequest{Messages: []Message{user}, N: intPtr(2)},
			wantField: "n",
		},
		{
			name:      "too many stop sequences",
			req:       ChatCompletionRequest{Messages: []Message{user}, Stop: StopSequences{"a", "b", "c", "d", "e"}},
			wantField: "stop",
		},
		{
			name:      "presence penalty out of range",
			req:       ChatCompletionRequest{Messages: []Message{user}, PresencePenalty: floatPtr(3)},
			wantField: "presence_penalty",
		},
		{
			name:      "frequency penalty out of range",
			req:       ChatCompletionRequest{Messages: []Message{user}, FrequencyPenalty: floatPtr(-3)},
			wantField: "frequency_penalty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, valErr.Field)
			}
		})
	}
}

func TestErrorResponse_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		resp *ErrorResponse
		want int
	}{
		{"invalid request", NewInvalidRequestError("bad", "messages", CodeMissingField), 400},
		{"too large", NewInvalidRequestError("big", "", CodeRequestTooLarge), 413},
		{"auth", NewAuthenticationError("Invalid API key"), 401},
		{"not found", NewNotFoundError("nope"), 404},
		{"method", NewMethodNotAllowedError("nope"), 405},
		{"server", NewServerError("boom"), 500},
		{"upstream", NewUpstreamError("Upstream error"), 502},
		{"timeout", NewUpstreamTimeoutError("slow"), 504},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.StatusCode(); got != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNewUpstreamError_Envelope(t *testing.T) {
	data, err := json.Marshal(NewUpstreamError("Failed to connect to upstream"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"error":{"message":"Failed to connect to upstream","type":"server_error"}}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

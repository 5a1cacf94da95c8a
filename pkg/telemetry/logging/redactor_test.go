package logging

import (
	"errors"
	"log/slog"
	"testing"

	"mercator-hq/jimmybridge/pkg/config"
)

func TestRedactor_RedactString(t *testing.T) {
	r, err := NewRedactor(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bearer token", "Authorization: Bearer abc.def-ghi", "Authorization: Bearer ***"},
		{"lowercase bearer", "bearer sk-abcdef", "Bearer ***"},
		{"api key", "using key sk-abc123xyz", "using key sk-***"},
		{"password", "password=hunter2", "password: ***"},
		{"short sk prefix untouched", "task-ok", "task-ok"},
		{"plain text", "Hello world", "Hello world"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_CustomPatterns(t *testing.T) {
	r, err := NewRedactor([]config.RedactPattern{
		{Name: "session", Pattern: `sess_[0-9a-f]+`, Replacement: "sess_***"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := r.RedactString("cookie sess_deadbeef"); got != "cookie sess_***" {
		t.Errorf("expected custom redaction, got %q", got)
	}
}

func TestRedactor_InvalidCustomPattern(t *testing.T) {
	_, err := NewRedactor([]config.RedactPattern{{Name: "bad", Pattern: "("}})
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	r, err := NewRedactor(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"sensitive key", slog.String("auth_token", "abcdefgh"), "abcd***"},
		{"authorization key", slog.String("Authorization", "Bearer xyz"), "Bear***"},
		{"plain key with secret", slog.String("msg", "Bearer xyz"), "Bearer ***"},
		{"error value", slog.Any("error", errors.New("bad sk-abcdef12")), "bad sk-***"},
		{"plain value", slog.String("path", "/v1/models"), "/v1/models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ReplaceAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.Value.String())
			}
		})
	}

	// Non-string values pass through.
	n := r.ReplaceAttr(nil, slog.Int("token_count", 5))
	if n.Value.Int64() != 5 {
		t.Errorf("expected int to pass through, got %v", n.Value)
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"sk-abcdef", "sk-a***"},
	}
	for _, tt := range tests {
		if got := RedactAPIKey(tt.in); got != tt.want {
			t.Errorf("RedactAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

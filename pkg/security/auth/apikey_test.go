package auth

import (
	"errors"
	"sync"
	"testing"
)

func TestTokenValidator_Validate(t *testing.T) {
	tests := []struct {
		name        string
		configured  string
		presented   string
		expectedErr error
	}{
		{"matching token", "sk-local-123", "sk-local-123", nil},
		{"wrong token", "sk-local-123", "sk-local-124", ErrInvalidToken},
		{"prefix of token", "sk-local-123", "sk-local", ErrInvalidToken},
		{"missing token", "sk-local-123", "", ErrMissingToken},
		{"auth disabled accepts anything", "", "whatever", nil},
		{"auth disabled accepts nothing", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewTokenValidator(tt.configured)

			err := v.Validate(tt.presented)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestTokenValidator_Enabled(t *testing.T) {
	if NewTokenValidator("").Enabled() {
		t.Error("expected empty token to disable auth")
	}
	if !NewTokenValidator("sk-local-123").Enabled() {
		t.Error("expected configured token to enable auth")
	}
}

func TestTokenValidator_SetToken(t *testing.T) {
	v := NewTokenValidator("first")

	v.SetToken("second")
	if err := v.Validate("first"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected old token to be rejected, got %v", err)
	}
	if err := v.Validate("second"); err != nil {
		t.Errorf("expected new token to be accepted, got %v", err)
	}

	v.SetToken("")
	if v.Enabled() {
		t.Error("expected auth to be disabled after clearing the token")
	}
}

func TestTokenValidator_ConcurrentAccess(t *testing.T) {
	v := NewTokenValidator("a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v.SetToken("b")
		}()
		go func() {
			defer wg.Done()
			_ = v.Validate("b")
		}()
	}
	wg.Wait()

	if err := v.Validate("b"); err != nil {
		t.Errorf("expected final token to validate, got %v", err)
	}
}

func BenchmarkTokenValidator_Validate(b *testing.B) {
	v := NewTokenValidator("sk-local-1234567890")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.Validate("sk-local-1234567890")
	}
}

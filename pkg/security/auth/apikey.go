package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync/atomic"
)

// TokenValidator checks bearer tokens against a single configured token.
// The token can be replaced at runtime, for example on config reload.
// An empty token disables authentication.
type TokenValidator struct {
	// digest holds the SHA-256 of the token, or nil when auth is off.
	digest atomic.Pointer[[sha256.Size]byte]
}

// NewTokenValidator creates a validator for token.
func NewTokenValidator(token string) *TokenValidator {
	v := &TokenValidator{}
	v.SetToken(token)
	return v
}

// SetToken replaces the expected token. An empty token disables auth.
func (v *TokenValidator) SetToken(token string) {
	if token == "" {
		v.digest.Store(nil)
		return
	}
	sum := sha256.Sum256([]byte(token))
	v.digest.Store(&sum)
}

// Enabled reports whether a token is configured.
func (v *TokenValidator) Enabled() bool {
	return v.digest.Load() != nil
}

// Validate checks token in constant time. It always succeeds when auth is
// disabled.
func (v *TokenValidator) Validate(token string) error {
	expected := v.digest.Load()
	if expected == nil {
		return nil
	}
	if token == "" {
		return ErrMissingToken
	}

	// Comparing digests keeps the comparison length-independent.
	presented := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(presented[:], expected[:]) != 1 {
		return ErrInvalidToken
	}
	return nil
}

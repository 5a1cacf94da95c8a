package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when the presented token does not match.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// TokenStore validates bearer tokens.
type TokenStore interface {
	Enabled() bool
	Validate(token string) error
}

package auth

import "errors"

// Sentinel errors for credential extraction and gating.
var (
	// ErrMissingHeader indicates the Authorization header was absent.
	ErrMissingHeader = errors.New("auth: missing authorization header")

	// ErrMalformedHeader indicates the Authorization header was present
	// but not a "Bearer "-prefixed value.
	ErrMalformedHeader = errors.New("auth: malformed authorization header")

	// ErrEmptyToken indicates the bearer token was empty after
	// stripping the prefix.
	ErrEmptyToken = errors.New("auth: empty bearer token")

	// ErrInvalidToken indicates signature or expiry validation failed.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrMisconfigured indicates the shared secret is not set while
	// authentication is enabled.
	ErrMisconfigured = errors.New("auth: server misconfigured: shared secret is not set")
)

package token

import "errors"

// Sentinel errors for token generation and decoding.
var (
	// ErrEmptySecret indicates a signing secret was not provided.
	ErrEmptySecret = errors.New("token: secret is empty")

	// ErrMalformed indicates a token string is not two dot-separated segments.
	ErrMalformed = errors.New("token: malformed token")
)

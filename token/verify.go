package token

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"time"
)

// Verifier checks token signatures and expiry.
//
// Contract:
// - Concurrency: safe for concurrent use; a Verifier holds no mutable state.
// - Errors: Validate never returns an error; all failures yield (nil, false).
type Verifier struct {
	now func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithClock overrides the wall clock used for expiry checks.
// Intended for tests.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier creates a Verifier.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the signature and expiry of tok against secret.
//
// On success it returns the decoded claims and true. Any failure, from
// an empty input through a forged signature to a past exp claim,
// returns (nil, false); expired and forged tokens are deliberately
// indistinguishable to avoid giving callers an oracle.
func (v *Verifier) Validate(tok, secret string) (map[string]any, bool) {
	if tok == "" || secret == "" {
		return nil, false
	}

	payloadB64, signatureB64, err := Decode(tok)
	if err != nil {
		return nil, false
	}

	expected := sign(secret, payloadB64)
	if subtle.ConstantTimeCompare([]byte(signatureB64), []byte(expected)) != 1 {
		return nil, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, false
	}

	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}

	if exp, ok := claims["exp"]; ok {
		f, ok := exp.(float64)
		if !ok {
			return nil, false
		}
		if f < float64(v.now().Unix()) {
			return nil, false
		}
	}

	return claims, true
}

// Validate checks tok against secret using the real clock.
func Validate(tok, secret string) (map[string]any, bool) {
	return NewVerifier().Validate(tok, secret)
}

package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// jtiBytes is the amount of randomness in a token identifier.
// Hex-encoded it yields a 32-character jti claim.
const jtiBytes = 16

// Claims describes the caller-controlled portion of a token payload.
//
// The issued-at (iat) and token identifier (jti) claims are always
// computed fresh at generation time; values for those keys supplied via
// Extra are overwritten. Extra keys that collide with "sub" or "exp"
// silently replace them, matching the historical behavior of this
// scheme. Callers should avoid the reserved names.
type Claims struct {
	// Subject is the caller identifier, carried as the "sub" claim
	// when non-empty.
	Subject string

	// ExpirySeconds sets the "exp" claim relative to now. Zero means
	// the token never expires; a negative value produces a token that
	// is already expired.
	ExpirySeconds int

	// Extra holds additional flat key/value claims merged into the
	// payload.
	Extra map[string]any
}

// Generate creates a signed token for the given claims.
//
// The payload always contains fresh "iat" and "jti" claims. Returns
// ErrEmptySecret if secret is empty.
func Generate(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	now := time.Now().Unix()

	payload := make(map[string]any, len(claims.Extra)+4)
	if claims.Subject != "" {
		payload["sub"] = claims.Subject
	}
	if claims.ExpirySeconds != 0 {
		payload["exp"] = now + int64(claims.ExpirySeconds)
	}
	for k, v := range claims.Extra {
		payload[k] = v
	}

	// iat and jti are never caller-controlled.
	payload["iat"] = now
	payload["jti"] = newJTI()

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	payloadB64 := base64.RawURLEncoding.EncodeToString(raw)
	return payloadB64 + "." + sign(secret, payloadB64), nil
}

// Decode splits a token into its payload and signature segments.
// Returns ErrMalformed unless the token contains exactly one dot.
func Decode(tok string) (payloadB64, signatureB64 string, err error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return "", "", ErrMalformed
	}
	return parts[0], parts[1], nil
}

// sign computes the base64url (no padding) HMAC-SHA256 signature over
// the payload segment. The digest covers the encoded segment bytes,
// not the decoded JSON.
func sign(secret, payloadB64 string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadB64))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// newJTI returns a random 32-hex-character token identifier.
func newJTI() string {
	b := make([]byte, jtiBytes)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

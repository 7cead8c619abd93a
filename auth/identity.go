package auth

import "time"

// Identity represents the principal behind a validated token. It is
// informational only; the gate grants identical access to every valid
// token.
type Identity struct {
	// Principal is the caller identifier from the "sub" claim, empty
	// for tokens issued without one.
	Principal string

	// Claims contains the full decoded token payload.
	Claims map[string]any

	// IssuedAt is the token's "iat" claim.
	IssuedAt time.Time

	// ExpiresAt is the token's "exp" claim; zero when the token does
	// not expire.
	ExpiresAt time.Time
}

// IdentityFromClaims builds an Identity from decoded token claims.
func IdentityFromClaims(claims map[string]any) *Identity {
	id := &Identity{Claims: claims}
	if sub, ok := claims["sub"].(string); ok {
		id.Principal = sub
	}
	if iat, ok := claims["iat"].(float64); ok {
		id.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return id
}

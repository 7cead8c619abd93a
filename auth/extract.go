package auth

import "strings"

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// ExtractBearer pulls the bearer token out of the Authorization header.
//
// Returns ErrMissingHeader when the header is absent and
// ErrMalformedHeader when it does not start with the case-sensitive
// "Bearer " prefix. The prefix is stripped exactly once, so a client
// that double-prefixes ("Bearer Bearer xyz") yields "Bearer xyz". An
// empty token after stripping is returned as ("", nil); classifying it
// is the gate's job.
func ExtractBearer(headers HeaderLookup) (string, error) {
	raw, ok := headers.Get(authorizationHeader)
	if !ok {
		return "", ErrMissingHeader
	}
	if !strings.HasPrefix(raw, bearerPrefix) {
		return "", ErrMalformedHeader
	}
	return strings.TrimPrefix(raw, bearerPrefix), nil
}

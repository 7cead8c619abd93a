// Package token implements the signed bearer token scheme used by the
// weather MCP server.
//
// A token is two base64url segments (no padding) joined by a dot:
// <payload>.<signature>. The payload is a flat JSON claims object and
// the signature is an HMAC-SHA256 digest of the payload segment itself,
// keyed by a process-wide shared secret. Tokens carry no server-side
// state; validity is a pure function of the token, the secret, and the
// clock.
package token

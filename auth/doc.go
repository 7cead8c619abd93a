// Package auth implements bearer-token authentication for the weather
// MCP server: header extraction, the access gate that decides whether
// a request may proceed, and HTTP middleware that converts denials
// into structured JSON responses.
//
// The gate is configured once at startup from an immutable Config and
// is safe for unsynchronized concurrent use. It never interprets
// claims for authorization scoping; any valid token grants the same
// access.
package auth

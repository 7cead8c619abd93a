// Package observe wires structured logging, OpenTelemetry metrics, and
// tracing for the weather MCP server. The auth gate and the tool
// dispatcher record every decision and call through this package; the
// logger redacts credential-bearing fields so tokens and secrets never
// reach the log stream.
package observe

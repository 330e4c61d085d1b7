// Package component defines lifecycle-managed parts of the service (the
// scheduler loop, the SSE hub, telemetry exporters, the HTTP server) and
// a registry that starts them in order and stops them in reverse.
package component

// Package errors provides the structured error type used across rxlab.
// Errors carry a machine-readable code, an HTTP status and optional details,
// and render to a JSON envelope for API callers.
package errors

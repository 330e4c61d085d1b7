// Package server runs the HTTP API: a gin engine mounted on a ServeMux and
// served through an h2c handler so HTTP/2 works without TLS.
//
// Middleware (server/middleware) covers panic recovery, request ids,
// tracing, request metrics, request logging and CORS. Endpoints
// (server/endpoint) provide /health, /ready and /info.
package server

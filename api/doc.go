// Package api exposes a Sandbox over HTTP.
//
// Routes are registered on a gin router by Handler.Register:
//
//	GET    /api/catalog
//	POST   /api/runs/:name
//	GET    /api/runs/active
//	DELETE /api/runs/active
//	POST   /api/sources/stop
//	GET    /api/logs
//	DELETE /api/logs
//	GET    /api/logs/stream
//
// The stream route serves Server-Sent Events from an sse.Hub. A new client
// first receives a "snapshot" event holding the current lines, then one
// "log" event per sink change. Use sandbox.BridgeLogs with StreamPattern to
// feed the hub.
package api

// Package sse pushes Server-Sent Events to connected HTTP clients.
//
// A Hub owns the set of clients and fans out events to every client whose
// id matches a glob pattern ("logs:*"). ServeSSE attaches one HTTP
// request to the hub and writes frames until the client goes away:
//
//	event: log
//	data: {"type":"append","index":3,"line":"Subscription: A: 1"}
package sse

// Package realtime pushes roster change notifications to connected viewers
// over WebSockets.
//
// The server side is a [Hub], an http.Handler that upgrades requests and fans
// each published [Event] out to every connected client. The client side is
// a [Service]: an explicitly constructed connection that dispatches events
// to subscribed handlers and reconnects with exponential backoff when the
// connection drops.
//
// Events are JSON objects:
//
//	{"id": "0b6f…", "type": "roster.updated", "time": "2026-10-15T09:00:00Z", "payload": {...}}
//
// A Service is owned by whoever constructs it; there is no package-level
// connection.
package realtime

// Package api implements the HTTP REST API and WebSocket server for Pico Bridge.
//
// This package provides:
//   - REST endpoints to open sessions, render pages and apply widget changes
//   - WebSocket hub that pushes region patches and re-rendered pages per session
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - Health and metrics endpoints for basic monitoring
//
// # Architecture
//
// The API server sits between the browser and the dashboard App. A browser
// opens a session, renders the page, and then holds a WebSocket for that
// session. Widget changes flow in over REST or the socket; the event bridge
// pushes display region updates back out through the hub.
//
// # Graceful Degradation
//
// The server operates without a broker. Pages still render and widget
// changes still apply; the publish status line reports the failure.
package api

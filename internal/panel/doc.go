// Package panel serves the dashboard web client.
//
// The client (index.html, app.js, style.css) is embedded into the binary
// with go:embed. It renders the page tree returned by the API, applies
// region patches pushed over the WebSocket and posts widget changes back.
//
// Handler can also serve the client from a directory on disk so it can be
// edited without rebuilding. Paths without a file extension that match no
// asset fall back to index.html; missing assets are a 404.
package panel

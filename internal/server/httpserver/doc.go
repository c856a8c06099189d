// Package httpserver serves the status endpoint of a running watch.
//
// Routes:
//
//   - GET /healthz: liveness, always 200
//   - GET /readyz: 200 once the current build is valid, 503 otherwise
//   - GET /status: the latest build report
//   - GET /config: the last valid configuration, redacted
//   - GET /metrics: Prometheus exposition, when a metrics handler is set
//
// JSON responses share one envelope (see Response). Handlers only read
// immutable snapshots published through Status, so the watch loop never
// blocks on a slow client.
package httpserver

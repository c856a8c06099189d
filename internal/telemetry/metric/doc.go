// Package metric provides Prometheus metrics for the configuration engine.
//
// Metrics include:
//
//   - Build counters by result (ok, invalid, error)
//   - Build duration histogram
//   - Registered context gauge
//   - File reloads seen by the watcher
//
// Each Registry owns a private prometheus.Registry with the Go and process
// collectors, exposed through Handler.
package metric

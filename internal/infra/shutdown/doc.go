// Package shutdown stops long-running CLI commands cleanly.
//
// A Handler waits for SIGINT, SIGTERM or cancellation of its context, then
// runs the registered hooks in reverse registration order under a timeout.
// `confhelper watch` uses it to stop the file watcher and the metrics
// endpoint.
package shutdown

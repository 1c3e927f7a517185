// Package sync exposes the media and static sync targets over HTTP.
//
// # Endpoints
//
//   - GET  /sync/targets: configured targets
//   - POST /sync/:target: run a target (query: test_run, wipe, container, verbosity)
//
// Within one process, identical requests that arrive while a run is in flight
// join that run, and mutating runs against the same container are serialised.
// Nothing is locked across processes.
package sync

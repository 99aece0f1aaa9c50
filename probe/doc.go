// Package probe turns store pings, MongoDB clients and HTTP endpoints into
// readiness and liveness checks. The server wires a store probe into /readyz
// and the healthcheck command points an HTTP probe at a running instance.
package probe

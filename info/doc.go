// Package info exposes build metadata, health probes and the OpenAPI document
// of the todo service, plus a Stoplight Elements page rendering it.
//
// Register mounts every endpoint on a ServeMux. Readiness checks are usually
// backed by the configured todo store, see probe.NewStoreProbe.
//
// See ExampleHandler for a runnable wiring of the handler and probes.
package info

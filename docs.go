// Package todoweaver is a todo collection served over HTTP. Clients create,
// list, fetch, merge-patch and delete free-form JSON objects; the service
// assigns each one an id, a url and a completed flag.
//
// The todo package defines the store contract and the merge rules. memstore
// and mongostore implement it, and todo/storetest holds the contract tests
// both backends run. The api package maps HTTP requests onto exactly one
// store call each and renders the outcome through responder, which turns
// store failures into problem documents or empty 500s.
//
// # Packages
//
//   - todo: the Todo type, merge-patch semantics, id generation and error
//     kinds.
//   - memstore: a mutex guarded in-memory store.
//   - mongostore: a MongoDB backed store.
//   - api: the /todos handlers and the embedded OpenAPI document.
//   - router: logging, CORS, timeout and OpenAPI validation middleware.
//   - responder: JSON rendering, problem documents and trace ids.
//   - info: status, health, readiness, version and docs endpoints.
//   - probe: readiness checks for stores, MongoDB clients and HTTP endpoints.
//   - config: defaults, YAML/TOML files and environment overrides.
//   - server: assembles everything and runs the HTTP server.
//   - jsonutil: thin sonic wrappers.
//
// # Quick Start
//
//	cfg, err := config.Load("todoweaver.yaml")
//	if err != nil {
//	    return err
//	}
//	srv, err := server.New(ctx, cfg, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
//
// The todoweaver command does the same from the command line:
//
//	todoweaver serve --backend mongo --port 8080
package todoweaver

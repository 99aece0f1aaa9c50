// Package todo defines the todo resource, the Store capability that both
// persistence backends implement, the merge-patch rules applied by partial
// updates and the error kinds callers translate into HTTP statuses.
//
// A Todo is an open JSON object. The service manages three fields on it:
//
//   - id: assigned once when the todo is created and never changed.
//   - completed: reset to false on creation.
//   - url: the absolute locator of the todo, derived from the base URL of
//     the collection and the id.
//
// Everything else is client data and passes through untouched unless a
// merge-patch overwrites it.
package todo

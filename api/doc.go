// Package api maps the /todos HTTP surface onto a todo.Store.
//
// Handler decodes requests, calls exactly one store operation and renders the
// outcome through a responder. Store errors are translated by kind only:
// invalid input becomes 400, unknown ids 404 and everything else 500 with an
// empty body. The package also embeds the OpenAPI document describing the
// service; see Swagger.
package api

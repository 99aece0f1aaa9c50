// Package router wraps the todo service's ServeMux in its middleware stages:
// request logging, CORS, a per-request timeout and OpenAPI request
// validation, in that order. Stages can be switched off with Without and
// surrounded with custom middlewares.
package router

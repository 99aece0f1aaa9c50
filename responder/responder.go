// Package responder renders JSON payloads and RFC 9457 problem documents for
// the todo API and logs failures with a trace id. Handlers hand it errors and
// a classifier decides the status; the error text of server side failures
// never reaches the client.
package responder

import (
	"log/slog"
	"maps"
)

const (
	jsonContentType    = "application/json"
	problemContentType = "application/problem+json"

	// TraceIDHeader carries the trace id of every error response so clients
	// can quote it when the body is empty.
	TraceIDHeader = "X-Trace-Id"
)

// ErrorClassifierFunc maps an error to a status. handled reports whether the
// classifier recognised the error; unrecognised errors become 500.
type ErrorClassifierFunc func(err error) (status int, handled bool)

// ResponderOption configures NewResponder.
type ResponderOption func(*Responder)

// Responder writes the JSON and problem responses of a set of handlers and
// logs every error it renders.
type Responder struct {
	log        *slog.Logger
	problems   map[int]ProblemType
	classifier ErrorClassifierFunc
}

// NewResponder returns a Responder logging to slog.Default with the built-in
// problem catalog.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log:      slog.Default(),
		problems: maps.Clone(defaultProblems),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger injects a custom slog logger for error reporting.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithErrorClassifier installs the classifier used by HandleErrors.
func WithErrorClassifier(classifier ErrorClassifierFunc) ResponderOption {
	return func(r *Responder) {
		r.classifier = classifier
	}
}

// WithProblemType overrides how errors answered with status are rendered
// and logged.
func WithProblemType(status int, pt ProblemType) ResponderOption {
	return func(r *Responder) {
		r.problems[status] = pt.withDefaults(status)
	}
}

// Logger returns the logger errors are reported to.
func (r *Responder) Logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

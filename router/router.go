package router

import "net/http"

// New wraps handler in the configured middleware chain and mounts it at the
// root of a fresh ServeMux.
func New(handler http.Handler, opts ...Option) *http.ServeMux {
	if handler == nil {
		panic("router: handler cannot be nil")
	}

	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", chain(handler, settings.middlewareChain()))
	return mux
}

// chain applies middlewares so that the first one sees the request first.
func chain(handler http.Handler, middlewares []Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

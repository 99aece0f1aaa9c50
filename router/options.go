package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/todoweaver/responder"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Stage names one of the built-in middlewares. Stages run in declaration
// order, outermost first.
type Stage int

const (
	// StageLogging logs every request that is not a quiet route.
	StageLogging Stage = iota
	// StageCORS adds cross origin headers and answers preflights.
	StageCORS
	// StageTimeout bounds the time a handler may take.
	StageTimeout
	// StageValidation checks requests against the OpenAPI document.
	StageValidation
)

var stages = []Stage{StageLogging, StageCORS, StageTimeout, StageValidation}

func (s Stage) String() string {
	switch s {
	case StageLogging:
		return "logging"
	case StageCORS:
		return "cors"
	case StageTimeout:
		return "timeout"
	case StageValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Option configures the router via the functional options pattern.
type Option func(*options)

type options struct {
	config    Config
	logger    *slog.Logger
	responder *responder.Responder
	swagger   *openapi3.T
	outer     []Middleware
	inner     []Middleware
	chain     []Middleware
	replaced  bool
	disabled  map[Stage]bool
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout: 30 * time.Second,
			CORS:    DefaultCORSConfig(),
		},
		logger:   slog.Default(),
		disabled: make(map[Stage]bool),
	}
}

func (o *options) middlewareChain() []Middleware {
	if o.replaced {
		return slices.Clone(o.chain)
	}

	chain := slices.Clone(o.outer)
	for _, s := range stages {
		if o.disabled[s] {
			continue
		}
		if mw := o.stage(s); mw != nil {
			chain = append(chain, mw)
		}
	}
	return append(chain, o.inner...)
}

// stage builds the middleware for s, or nil when its configuration leaves
// nothing to do.
func (o *options) stage(s Stage) Middleware {
	switch s {
	case StageLogging:
		if o.logger == nil {
			return nil
		}
		return loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders)
	case StageCORS:
		if len(o.config.CORS.Origins) == 0 {
			return nil
		}
		return corsMiddleware(o.config.CORS)
	case StageTimeout:
		if o.config.Timeout <= 0 {
			return nil
		}
		return timeoutMiddleware(o.config.Timeout)
	case StageValidation:
		if o.swagger == nil {
			return nil
		}
		return oapiMiddleware(o.swagger, o.problemResponder())
	default:
		return nil
	}
}

func (o *options) problemResponder() *responder.Responder {
	if o.responder != nil {
		return o.responder
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return responder.NewResponder(responder.WithLogger(logger))
}

// WithConfig replaces the router configuration with a copy of cfg.
func WithConfig(cfg Config) Option {
	cfg.QuietdownRoutes = slices.Clone(cfg.QuietdownRoutes)
	cfg.HideHeaders = slices.Clone(cfg.HideHeaders)
	cfg.CORS.Origins = slices.Clone(cfg.CORS.Origins)
	cfg.CORS.Methods = slices.Clone(cfg.CORS.Methods)
	cfg.CORS.Headers = slices.Clone(cfg.CORS.Headers)
	return func(o *options) {
		o.config = cfg
	}
}

// WithConfigMutator edits the configuration in place after earlier options ran.
func WithConfigMutator(mutate func(*Config)) Option {
	return func(o *options) {
		if mutate != nil {
			mutate(&o.config)
		}
	}
}

// WithLogger sets the request logger. A nil logger disables StageLogging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResponder sets the responder used to render requests rejected by the
// OpenAPI validator.
func WithResponder(r *responder.Responder) Option {
	return func(o *options) {
		o.responder = r
	}
}

// WithSwagger enables StageValidation against the given document.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithOuterMiddlewares runs middlewares before the built-in stages.
func WithOuterMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.outer = append(o.outer, middlewares...)
	}
}

// WithInnerMiddlewares runs middlewares after the built-in stages, right
// before the handler.
func WithInnerMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.inner = append(o.inner, middlewares...)
	}
}

// WithChain replaces the whole chain, built-in stages included.
func WithChain(middlewares ...Middleware) Option {
	chain := slices.Clone(middlewares)
	return func(o *options) {
		o.chain = chain
		o.replaced = true
	}
}

// Without disables the named built-in stages.
func Without(disabled ...Stage) Option {
	return func(o *options) {
		for _, s := range disabled {
			o.disabled[s] = true
		}
	}
}

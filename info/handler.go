package info

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/drblury/todoweaver/probe"
	"github.com/drblury/todoweaver/responder"
)

// VersionProvider returns the payload of the version endpoint.
type VersionProvider func() any

// DocumentProvider returns the raw OpenAPI document, usually api.Document.
type DocumentProvider func() ([]byte, error)

// DocsDataFunc builds the data the docs template is executed with. Returning
// nil falls back to BaseURL and SpecURL.
type DocsDataFunc func(r *http.Request, baseURL string) any

// ProbeFunc is the check signature shared with the probe package.
type ProbeFunc = probe.Func

// Option configures NewHandler.
type Option func(*Handler)

const defaultProbeTimeout = 2 * time.Second

var errNoDocument = errors.New("openapi document not configured")

// Handler serves the operational endpoints next to the todo API: build
// information, status checks, the OpenAPI document and its HTML viewer.
type Handler struct {
	*responder.Responder

	baseURL          string
	versionProvider  VersionProvider
	documentProvider DocumentProvider
	docsTemplate     *template.Template
	docsData         DocsDataFunc
	probeTimeout     time.Duration
	livenessChecks   []Check
	readinessChecks  []Check
}

// NewHandler reports build information on /version and, until WithDocument is
// given, answers the document endpoints with a server error.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		Responder:        responder.NewResponder(),
		versionProvider:  func() any { return ReadBuildInfo() },
		documentProvider: func() ([]byte, error) { return nil, errNoDocument },
		docsTemplate:     stoplightTemplate,
		docsData:         defaultDocsData,
		probeTimeout:     defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// WithResponder shares a responder, and with it the logger, with the API.
func WithResponder(r *responder.Responder) Option {
	return func(h *Handler) {
		if r != nil {
			h.Responder = r
		}
	}
}

// WithBaseURL sets the public URL of the service. The docs page loads the
// document from below it.
func WithBaseURL(baseURL string) Option {
	return func(h *Handler) { h.baseURL = baseURL }
}

func WithVersionProvider(provider VersionProvider) Option {
	return func(h *Handler) {
		if provider != nil {
			h.versionProvider = provider
		}
	}
}

// WithDocument sets the source of /openapi.json.
func WithDocument(provider DocumentProvider) Option {
	return func(h *Handler) {
		if provider != nil {
			h.documentProvider = provider
		}
	}
}

// WithDocsTemplate replaces the Stoplight page served on /docs.
func WithDocsTemplate(tmpl *template.Template) Option {
	return func(h *Handler) {
		if tmpl != nil {
			h.docsTemplate = tmpl
		}
	}
}

func WithDocsData(fn DocsDataFunc) Option {
	return func(h *Handler) {
		if fn != nil {
			h.docsData = fn
		}
	}
}

// WithProbeTimeout bounds a whole round of liveness or readiness checks.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.probeTimeout = timeout
		}
	}
}

// WithLivenessCheck adds a named check to the /healthz endpoint.
func WithLivenessCheck(name string, fn ProbeFunc) Option {
	return func(h *Handler) {
		h.livenessChecks = appendCheck(h.livenessChecks, name, fn)
	}
}

// WithReadinessCheck adds a named check to the /readyz endpoint, typically a
// ping of the todo store.
func WithReadinessCheck(name string, fn ProbeFunc) Option {
	return func(h *Handler) {
		h.readinessChecks = appendCheck(h.readinessChecks, name, fn)
	}
}

func defaultDocsData(_ *http.Request, baseURL string) any {
	return map[string]any{
		"BaseURL": baseURL,
		"SpecURL": OpenAPISpecURL(baseURL),
	}
}

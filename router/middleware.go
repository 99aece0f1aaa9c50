package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/todoweaver/responder"
)

// TimeoutMessage is the body written when a request exceeds Config.Timeout.
const TimeoutMessage = "request timed out"

func oapiMiddleware(swagger *openapi3.T, resp *responder.Responder) Middleware {
	// The service is reachable under any host, so server URLs are not matched.
	swagger.Servers = nil

	validatorOptions := &oapiMW.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error {
				return nil
			},
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			resp.HandleAPIError(w, nil, statusCode, errors.New(message), "request rejected by OpenAPI validation")
		},
	}
	validate := oapiMW.OapiRequestValidatorWithOptions(swagger, validatorOptions)
	return func(next http.Handler) http.Handler {
		return assumeJSONBody(validate(next))
	}
}

// assumeJSONBody labels request bodies as application/json before they are
// validated. Handlers parse every body as JSON whatever its declared media
// type, so the header alone must not get a request rejected.
func assumeJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				r = r.Clone(r.Context())
				r.Header.Set("Content-Type", "application/json")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status and size of a response for the
// request log.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
	wrote   bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wrote {
		s.status = code
		s.wrote = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wrote = true
	n, err := s.ResponseWriter.Write(b)
	s.written += int64(n)
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware writes one record per request once the response is
// complete. Server errors are logged at warn level. Request headers are only
// attached when debug logging is enabled, with hideHeaders redacted.
func loggingMiddleware(logger *slog.Logger, quietdownRoutes, hideHeaders []string) Middleware {
	quiet := slices.Clone(quietdownRoutes)
	hidden := slices.Clone(hideHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(quiet, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			ctx := r.Context()
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("bytes", rec.written),
				slog.Duration("duration", time.Since(start)),
			}
			if logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, slog.Any("header", redactHeaders(r.Header, hidden)))
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "request served", attrs...)
		})
	}
}

// corsMiddleware adds CORS headers to every response. A wildcard origin is
// answered with "*", a listed origin is echoed back. Preflight requests are
// answered directly.
func corsMiddleware(cfg CORSConfig) Middleware {
	origins := slices.Clone(cfg.Origins)
	wildcard := slices.Contains(origins, "*")
	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard && !cfg.AllowCredentials:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && (wildcard || slices.Contains(origins, origin)):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && origin != "" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, TimeoutMessage)
	}
}

func redactHeaders(src http.Header, hide []string) http.Header {
	headers := src.Clone()
	for _, name := range hide {
		key := http.CanonicalHeaderKey(name)
		values, ok := headers[key]
		if !ok {
			continue
		}
		size := 0
		for _, v := range values {
			size += len(v)
		}
		headers[key] = []string{fmt.Sprintf("[REDACTED - %d bytes]", size)}
	}
	return headers
}

package info

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestGetStatusRunsNoChecks(t *testing.T) {
	handler := NewHandler(WithReadinessCheck("store", func(context.Context) error {
		return errors.New("down")
	}))

	rr := get(handler.GetStatus, StatusPath)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if payload := decodeProbePayload(t, rr.Body.Bytes()); payload.Status != "HEALTHY" || payload.Checks != nil {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestProbeEndpoints(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		opt    func(string, ProbeFunc) Option
		serve  func(*Handler) http.HandlerFunc
		state  string
		reason string
	}{
		{
			name:   "liveness",
			path:   HealthzPath,
			opt:    WithLivenessCheck,
			serve:  func(h *Handler) http.HandlerFunc { return h.GetHealthz },
			state:  "ok",
			reason: "event loop stalled",
		},
		{
			name:   "readiness",
			path:   ReadyzPath,
			opt:    WithReadinessCheck,
			serve:  func(h *Handler) http.HandlerFunc { return h.GetReadyz },
			state:  "ready",
			reason: "mongo unreachable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name+" passing checks are listed", func(t *testing.T) {
			handler := NewHandler(
				tc.opt("store", func(context.Context) error { return nil }),
				tc.opt("cache", func(context.Context) error { return nil }),
			)
			rr := httptest.NewRecorder()
			tc.serve(handler)(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			payload := decodeProbePayload(t, rr.Body.Bytes())
			if payload.Status != tc.state {
				t.Fatalf("expected status %s, got %s", tc.state, payload.Status)
			}
			if strings.Join(payload.Checks, ",") != "store,cache" {
				t.Fatalf("expected checks in registration order, got %v", payload.Checks)
			}
		})

		t.Run(tc.name+" failure names the check", func(t *testing.T) {
			handler := NewHandler(
				tc.opt("store", func(context.Context) error { return errors.New(tc.reason) }),
				tc.opt("cache", func(context.Context) error { return nil }),
			)
			rr := httptest.NewRecorder()
			tc.serve(handler)(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rr.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
			}
			problem := decodeProblemDetails(t, rr.Body.Bytes())
			if problem.Status != http.StatusServiceUnavailable {
				t.Fatalf("expected problem status %d, got %d", http.StatusServiceUnavailable, problem.Status)
			}
			if want := "store: " + tc.reason; !strings.Contains(problem.Detail, want) {
				t.Fatalf("expected detail to include %q, got %q", want, problem.Detail)
			}
			if strings.Contains(problem.Detail, "cache") {
				t.Fatalf("passing check leaked into detail %q", problem.Detail)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	testCases := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, body map[string]any)
	}{
		{
			name: "custom provider",
			opts: []Option{WithVersionProvider(func() any { return map[string]string{"commit": "abc123"} })},
			check: func(t *testing.T, body map[string]any) {
				if body["commit"] != "abc123" {
					t.Fatalf("expected commit abc123, got %v", body)
				}
			},
		},
		{
			name: "nil payload becomes an empty object",
			opts: []Option{WithVersionProvider(func() any { return nil })},
			check: func(t *testing.T, body map[string]any) {
				if len(body) != 0 {
					t.Fatalf("expected empty object, got %v", body)
				}
			},
		},
		{
			name: "build information by default",
			check: func(t *testing.T, body map[string]any) {
				if body["version"] == "" || body["version"] == nil {
					t.Fatalf("expected a version, got %v", body)
				}
				if _, ok := body["goVersion"]; !ok {
					t.Fatalf("expected the go version, got %v", body)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := get(NewHandler(tc.opts...).GetVersion, VersionPath)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			tc.check(t, decodeObject(t, rr.Body.Bytes()))
		})
	}
}

func TestGetOpenAPIJSON(t *testing.T) {
	t.Run("document is written verbatim", func(t *testing.T) {
		doc := []byte(`{"openapi":"3.0.3","paths":{"/todos":{}}}`)
		rr := get(NewHandler(WithDocument(func() ([]byte, error) { return doc, nil })).GetOpenAPIJSON, OpenAPIPath)

		if rr.Code != http.StatusOK || !bytes.Equal(rr.Body.Bytes(), doc) {
			t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.Bytes())
		}
		if got := rr.Header().Get("Content-Type"); got != "application/json" {
			t.Fatalf("expected Content-Type application/json, got %s", got)
		}
	})

	t.Run("missing document is a server error", func(t *testing.T) {
		var logs bytes.Buffer
		rr := get(NewHandler(WithResponder(newTestResponder(&logs))).GetOpenAPIJSON, OpenAPIPath)

		assertBodylessServerError(t, rr)
		if !strings.Contains(logs.String(), errNoDocument.Error()) {
			t.Fatalf("expected cause in logs, got %q", logs.String())
		}
	})

	t.Run("provider error is logged, not exposed", func(t *testing.T) {
		var logs bytes.Buffer
		handler := NewHandler(
			WithResponder(newTestResponder(&logs)),
			WithDocument(func() ([]byte, error) { return nil, errors.New("embedded file missing") }),
		)
		rr := get(handler.GetOpenAPIJSON, OpenAPIPath)

		assertBodylessServerError(t, rr)
		if !strings.Contains(logs.String(), "embedded file missing") {
			t.Fatalf("expected cause in logs, got %q", logs.String())
		}
	})
}

func TestGetOpenAPIHTML(t *testing.T) {
	failing := template.Must(template.New("docs").Funcs(template.FuncMap{
		"boom": func() (string, error) { return "", errors.New("render failure") },
	}).Parse(`partial {{boom}}`))

	testCases := []struct {
		name    string
		opts    []Option
		noTmpl  bool
		want    []string
		failure string
	}{
		{
			name: "stoplight page points at the document",
			opts: []Option{WithBaseURL("https://todos.example.com")},
			want: []string{"@stoplight/elements", "https://todos.example.com/openapi.json"},
		},
		{
			name: "custom data",
			opts: []Option{
				WithBaseURL("https://docs.example"),
				WithDocsTemplate(template.Must(template.New("docs").Parse(`{{.BaseURL}}|{{.Value}}`))),
				WithDocsData(func(r *http.Request, base string) any {
					return map[string]string{"BaseURL": base, "Value": r.URL.Query().Get("v")}
				}),
			},
			want: []string{"https://docs.example|custom"},
		},
		{
			name: "nil data falls back to the defaults",
			opts: []Option{
				WithBaseURL("https://fallback/"),
				WithDocsTemplate(template.Must(template.New("docs").Parse(`{{.BaseURL}} {{.SpecURL}}`))),
				WithDocsData(func(*http.Request, string) any { return nil }),
			},
			want: []string{"https://fallback/ https://fallback/openapi.json"},
		},
		{
			name:    "missing template",
			noTmpl:  true,
			failure: "openapi template not configured",
		},
		{
			name:    "execution error",
			opts:    []Option{WithDocsTemplate(failing)},
			failure: "render failure",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			handler := NewHandler(append([]Option{WithResponder(newTestResponder(&logs))}, tc.opts...)...)
			if tc.noTmpl {
				handler.docsTemplate = nil
			}

			rr := get(handler.GetOpenAPIHTML, DocsPath+"?v=custom")

			if tc.failure != "" {
				assertBodylessServerError(t, rr)
				if !strings.Contains(logs.String(), tc.failure) {
					t.Fatalf("expected %q in logs, got %q", tc.failure, logs.String())
				}
				return
			}
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
				t.Fatalf("unexpected content type %q", got)
			}
			for _, want := range tc.want {
				if !strings.Contains(rr.Body.String(), want) {
					t.Fatalf("expected %q in page %q", want, rr.Body.String())
				}
			}
		})
	}
}

func TestRegisterMountsEndpoints(t *testing.T) {
	handler := NewHandler(WithDocument(func() ([]byte, error) { return []byte(`{}`), nil }))
	mux := http.NewServeMux()
	handler.Register(mux)

	for _, path := range []string{StatusPath, HealthzPath, ReadyzPath, VersionPath, OpenAPIPath, DocsPath} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected %d, got %d", path, http.StatusOK, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, StatusPath, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST %s: expected %d, got %d", StatusPath, http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestOpenAPISpecURL(t *testing.T) {
	for base, want := range map[string]string{
		"https://api.example.com":  "https://api.example.com/openapi.json",
		"https://api.example.com/": "https://api.example.com/openapi.json",
		"":                         "/openapi.json",
	} {
		if got := OpenAPISpecURL(base); got != want {
			t.Fatalf("OpenAPISpecURL(%q) = %q, want %q", base, got, want)
		}
	}
}

package responder

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestResponder(buf *bytes.Buffer, opts ...ResponderOption) *Responder {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewResponder(append([]ResponderOption{WithLogger(logger)}, opts...)...)
}

func TestHandleAPIError(t *testing.T) {
	t.Run("client errors carry a problem document", func(t *testing.T) {
		var logs bytes.Buffer
		r := newTestResponder(&logs)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/todos/abc", nil)

		r.HandleAPIError(rec, req, http.StatusNotFound, errors.New("todo not found: id \"abc\""), "lookup failed")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != problemContentType {
			t.Fatalf("expected content type %q, got %q", problemContentType, got)
		}

		var problem ProblemDetails
		if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
			t.Fatalf("failed to decode problem: %v", err)
		}
		if problem.Instance != "/todos/abc" {
			t.Fatalf("expected instance /todos/abc, got %q", problem.Instance)
		}
		if problem.TraceID == "" || problem.TraceID != rec.Header().Get(TraceIDHeader) {
			t.Fatalf("expected trace id in body and header, got %q and %q", problem.TraceID, rec.Header().Get(TraceIDHeader))
		}
		if !strings.Contains(logs.String(), problem.TraceID) {
			t.Fatalf("expected trace id in logs, got %s", logs.String())
		}
		if !strings.Contains(logs.String(), `"notes":["lookup failed"]`) || !strings.Contains(logs.String(), `"level":"INFO"`) {
			t.Fatalf("expected notes at info level, got %s", logs.String())
		}
		if problem.Type != "https://httpstatuses.io/404" {
			t.Fatalf("unexpected type %q", problem.Type)
		}
	})

	t.Run("server errors hide the cause", func(t *testing.T) {
		var logs bytes.Buffer
		r := newTestResponder(&logs)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)

		r.HandleAPIError(rec, req, http.StatusInternalServerError, errors.New("server selection error: 10.0.0.7:27017"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty body, got %q", rec.Body.String())
		}
		if rec.Header().Get("Content-Type") != "" {
			t.Fatalf("expected no content type, got %q", rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(logs.String(), "10.0.0.7:27017") {
			t.Fatalf("expected cause to be logged, got %s", logs.String())
		}
		if !strings.Contains(logs.String(), `"level":"ERROR"`) {
			t.Fatalf("expected error level log, got %s", logs.String())
		}
	})

	t.Run("unknown 5xx statuses omit the body", func(t *testing.T) {
		r := newTestResponder(&bytes.Buffer{})
		rec := httptest.NewRecorder()

		r.HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadGateway, errors.New("upstream"))

		if rec.Code != http.StatusBadGateway || rec.Body.Len() != 0 {
			t.Fatalf("expected bare 502, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("service unavailable keeps the problem document", func(t *testing.T) {
		r := newTestResponder(&bytes.Buffer{})
		rec := httptest.NewRecorder()

		r.HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil), http.StatusServiceUnavailable, errors.New("probe 1 failed"))

		if rec.Code != http.StatusServiceUnavailable || rec.Body.Len() == 0 {
			t.Fatalf("expected 503 with body, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		r := newTestResponder(&bytes.Buffer{})
		rec := httptest.NewRecorder()

		r.HandleAPIError(rec, nil, http.StatusBadRequest, nil)

		if rec.Body.Len() != 0 || rec.Header().Get(TraceIDHeader) != "" {
			t.Fatal("expected no response for nil error")
		}
	})
}

func TestHandleErrors(t *testing.T) {
	errInvalid := errors.New("invalid")
	r := newTestResponder(&bytes.Buffer{}, WithErrorClassifier(func(err error) (int, bool) {
		if errors.Is(err, errInvalid) {
			return http.StatusBadRequest, true
		}
		return 0, false
	}))

	rec := httptest.NewRecorder()
	r.HandleErrors(rec, httptest.NewRequest(http.MethodPost, "/todos", nil), errInvalid)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected classified status 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.HandleErrors(rec, httptest.NewRequest(http.MethodPost, "/todos", nil), errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected fallback status 500, got %d", rec.Code)
	}
}

func TestRespondWithJSON(t *testing.T) {
	r := newTestResponder(&bytes.Buffer{})
	rec := httptest.NewRecorder()

	r.RespondWithJSON(rec, nil, http.StatusCreated, map[string]any{"title": "buy milk", "completed": false})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != jsonContentType {
		t.Fatalf("expected json content type, got %q", got)
	}
	if got := rec.Body.String(); got != "{\"completed\":false,\"title\":\"buy milk\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRespondWithJSONEncodingFailure(t *testing.T) {
	var logs bytes.Buffer
	r := newTestResponder(&logs)
	rec := httptest.NewRecorder()

	r.RespondWithJSON(rec, nil, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestRespondEmpty(t *testing.T) {
	r := NewResponder()
	rec := httptest.NewRecorder()

	r.RespondEmpty(rec, http.StatusNoContent)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDecodeRequestBody(t *testing.T) {
	t.Run("missing body", func(t *testing.T) {
		var v map[string]any
		err := DecodeRequestBody(httptest.NewRequest(http.MethodPost, "/todos", nil), &v)
		if !errors.Is(err, ErrEmptyBody) {
			t.Fatalf("expected ErrEmptyBody, got %v", err)
		}
		if err := DecodeRequestBody(nil, &v); !errors.Is(err, ErrEmptyBody) {
			t.Fatalf("expected ErrEmptyBody for nil request, got %v", err)
		}
	})

	t.Run("object", func(t *testing.T) {
		var v map[string]any
		req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{"title":"a"}`))
		if err := DecodeRequestBody(req, &v); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if v["title"] != "a" {
			t.Fatalf("unexpected value %v", v)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var v map[string]any
		req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{"title":`))
		if err := DecodeRequestBody(req, &v); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("trailing content", func(t *testing.T) {
		for _, body := range []string{`{"title":"x"} trailing`, `{"title":"x"}{"title":"y"}`} {
			var v map[string]any
			req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(body))
			if err := DecodeRequestBody(req, &v); !errors.Is(err, ErrMalformedBody) {
				t.Fatalf("%s: expected ErrMalformedBody, got %v", body, err)
			}
		}
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		var v map[string]any
		req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader("\n {\"title\":\"a\"} \n"))
		if err := DecodeRequestBody(req, &v); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

func TestWithProblemType(t *testing.T) {
	var logs bytes.Buffer
	r := newTestResponder(&logs,
		WithProblemType(http.StatusBadRequest, ProblemType{Title: "Invalid todo", Level: slog.LevelDebug}),
		WithProblemType(http.StatusNotFound, ProblemType{Bodyless: true}),
	)

	rec := httptest.NewRecorder()
	r.HandleAPIError(rec, httptest.NewRequest(http.MethodPatch, "/todos/1", nil), http.StatusBadRequest, errors.New("body must be a JSON object"))

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	if problem.Title != "Invalid todo" || problem.Type != "https://httpstatuses.io/400" {
		t.Fatalf("unexpected problem %+v", problem)
	}
	if !strings.Contains(logs.String(), `"level":"DEBUG"`) || !strings.Contains(logs.String(), `"msg":"Invalid todo"`) {
		t.Fatalf("expected the custom level and message, got %s", logs.String())
	}

	rec = httptest.NewRecorder()
	r.HandleAPIError(rec, nil, http.StatusNotFound, errors.New("gone"))
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("expected bodyless 404, got %d %q", rec.Code, rec.Body.String())
	}

	if NewResponder().problemType(http.StatusBadRequest).Title != "Bad Request" {
		t.Fatal("options must not leak into other responders")
	}
}

func TestDecodeRequestBodyEmptyReader(t *testing.T) {
	var v map[string]any
	for _, body := range []string{"", "  \n\t"} {
		req := httptest.NewRequest(http.MethodPost, "/todos", io.NopCloser(strings.NewReader(body)))
		if err := DecodeRequestBody(req, &v); !errors.Is(err, ErrEmptyBody) {
			t.Fatalf("%q: expected ErrEmptyBody, got %v", body, err)
		}
	}
}

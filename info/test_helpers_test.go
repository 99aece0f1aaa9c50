package info

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drblury/todoweaver/jsonutil"
	"github.com/drblury/todoweaver/responder"
)

func decodeInto[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := jsonutil.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %T: %v (body: %s)", v, err, body)
	}
	return v
}

func decodeProbePayload(t *testing.T, body []byte) probePayload {
	t.Helper()
	return decodeInto[probePayload](t, body)
}

func decodeProblemDetails(t *testing.T, body []byte) responder.ProblemDetails {
	t.Helper()
	return decodeInto[responder.ProblemDetails](t, body)
}

func decodeObject(t *testing.T, body []byte) map[string]any {
	t.Helper()
	return decodeInto[map[string]any](t, body)
}

func newTestResponder(logs *bytes.Buffer) *responder.Responder {
	return responder.NewResponder(responder.WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
}

// assertBodylessServerError checks the shape every 500 of the service has.
func assertBodylessServerError(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
	if rr.Header().Get(responder.TraceIDHeader) == "" {
		t.Fatal("expected trace id header")
	}
}

package responder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ProblemDetails aligns HTTP error responses with RFC 9457 problem documents.
type ProblemDetails struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ProblemType describes how errors of one status are answered. Zero fields
// fall back to the status text, a https://httpstatuses.io link and, for 5xx,
// error level logging.
type ProblemType struct {
	URI        string
	Title      string
	Level      slog.Level
	LogMessage string
	// Bodyless answers with the status and trace id header only.
	Bodyless bool
}

const problemTypeBaseURL = "https://httpstatuses.io"

var defaultProblems = map[int]ProblemType{
	http.StatusBadRequest:          ProblemType{Level: slog.LevelWarn}.withDefaults(http.StatusBadRequest),
	http.StatusNotFound:            ProblemType{Level: slog.LevelInfo}.withDefaults(http.StatusNotFound),
	http.StatusInternalServerError: ProblemType{Bodyless: true}.withDefaults(http.StatusInternalServerError),
}

func (pt ProblemType) withDefaults(status int) ProblemType {
	if pt.Title == "" {
		pt.Title = http.StatusText(status)
	}
	if pt.URI == "" {
		pt.URI = fmt.Sprintf("%s/%d", problemTypeBaseURL, status)
	}
	if pt.LogMessage == "" {
		pt.LogMessage = pt.Title
	}
	if pt.Level == 0 && status >= http.StatusInternalServerError {
		pt.Level = slog.LevelError
	}
	return pt
}

// problemType looks up status in the catalog. Unlisted server errors are
// bodyless except 503, whose detail tells probes what is missing.
func (r *Responder) problemType(status int) ProblemType {
	if pt, ok := r.problems[status]; ok {
		return pt
	}
	return ProblemType{
		Bodyless: status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable,
	}.withDefaults(status)
}

func newProblem(req *http.Request, status int, err error, pt ProblemType, traceID string) ProblemDetails {
	return ProblemDetails{
		Type:      pt.URI,
		Title:     pt.Title,
		Status:    status,
		Detail:    err.Error(),
		Instance:  requestURI(req),
		TraceID:   traceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (r *Responder) logProblem(req *http.Request, status int, err error, pt ProblemType, traceID string, notes []string) {
	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.String("traceId", traceID),
		slog.String("error", err.Error()),
	}
	if req != nil {
		attrs = append(attrs, slog.String("method", req.Method), slog.String("path", requestURI(req)))
	}
	if len(notes) > 0 {
		attrs = append(attrs, slog.Any("notes", notes))
	}
	r.Logger().LogAttrs(requestContext(req), pt.Level, pt.LogMessage, attrs...)
}

func requestURI(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.RequestURI()
}

func requestContext(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}

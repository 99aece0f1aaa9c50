package info

import (
	"bytes"
	"errors"
	"net/http"
)

// Paths of the operational endpoints.
const (
	StatusPath  = "/status"
	HealthzPath = "/healthz"
	ReadyzPath  = "/readyz"
	VersionPath = "/version"
	OpenAPIPath = "/openapi.json"
	DocsPath    = "/docs"
)

// Register mounts the operational endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+StatusPath, h.GetStatus)
	mux.HandleFunc("GET "+HealthzPath, h.GetHealthz)
	mux.HandleFunc("GET "+ReadyzPath, h.GetReadyz)
	mux.HandleFunc("GET "+VersionPath, h.GetVersion)
	mux.HandleFunc("GET "+OpenAPIPath, h.GetOpenAPIJSON)
	mux.HandleFunc("GET "+DocsPath, h.GetOpenAPIHTML)
}

// ProbePaths lists the endpoints polled by orchestrators. They are good
// candidates for the router's quiet routes.
func ProbePaths() []string {
	return []string{StatusPath, HealthzPath, ReadyzPath}
}

// GetStatus always answers HEALTHY; it runs no checks.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.respondProbe(w, r, "HEALTHY", nil)
}

// GetHealthz reports whether the process should be restarted. Every liveness
// check runs; failures are joined into the 503 problem detail.
func (h *Handler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	h.serveChecks(w, r, h.livenessChecks, "ok", "liveness probe failed")
}

// GetReadyz reports whether the service can take todo traffic. The body of a
// successful answer lists the checks that passed.
func (h *Handler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	h.serveChecks(w, r, h.readinessChecks, "ready", "readiness probe failed")
}

func (h *Handler) serveChecks(w http.ResponseWriter, r *http.Request, checks []Check, state, note string) {
	if err := h.runChecks(r.Context(), checks); err != nil {
		h.HandleAPIError(w, r, http.StatusServiceUnavailable, err, note)
		return
	}
	h.respondProbe(w, r, state, checks)
}

// GetVersion answers with the version provider's payload, BuildInfo by default.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := h.versionProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	h.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON writes the document verbatim. Provider failures are server
// errors.
func (h *Handler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documentProvider()
	if err != nil {
		h.HandleAPIError(w, r, http.StatusInternalServerError, err, "loading openapi document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(doc); err != nil {
		h.Logger().ErrorContext(r.Context(), "failed to write openapi document", "error", err)
	}
}

// GetOpenAPIHTML renders the docs template, by default a Stoplight Elements
// page loading OpenAPISpecURL. The page is rendered fully before anything is
// written so template errors still yield a clean 500.
func (h *Handler) GetOpenAPIHTML(w http.ResponseWriter, r *http.Request) {
	if h.docsTemplate == nil {
		h.HandleAPIError(w, r, http.StatusInternalServerError, errors.New("openapi template not configured"), "rendering docs page")
		return
	}

	data := h.docsData(r, h.baseURL)
	if data == nil {
		data = defaultDocsData(r, h.baseURL)
	}

	var page bytes.Buffer
	if err := h.docsTemplate.Execute(&page, data); err != nil {
		h.HandleAPIError(w, r, http.StatusInternalServerError, err, "rendering docs page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := page.WriteTo(w); err != nil {
		h.Logger().ErrorContext(r.Context(), "failed to write docs page", "error", err)
	}
}

package responder

import (
	"net/http"

	"github.com/drblury/todoweaver/jsonutil"
)

// HandleAPIError answers with status and logs err together with a fresh
// trace id. Notes are attached to the log record only. A nil req is allowed
// for middlewares that only see the writer.
func (r *Responder) HandleAPIError(w http.ResponseWriter, req *http.Request, status int, err error, notes ...string) {
	if err == nil {
		return
	}

	pt := r.problemType(status)
	traceID := newTraceID()
	r.logProblem(req, status, err, pt, traceID, notes)

	if w == nil {
		return
	}
	w.Header().Set(TraceIDHeader, traceID)
	if pt.Bodyless {
		w.WriteHeader(status)
		return
	}
	r.writeJSON(w, req, status, problemContentType, newProblem(req, status, err, pt, traceID))
}

// HandleErrors answers err with the status chosen by the classifier, or 500
// when it is not recognised.
func (r *Responder) HandleErrors(w http.ResponseWriter, req *http.Request, err error, notes ...string) {
	if err == nil {
		return
	}
	status := http.StatusInternalServerError
	if r.classifier != nil {
		if s, ok := r.classifier(err); ok {
			status = s
		}
	}
	r.HandleAPIError(w, req, status, err, notes...)
}

// RespondWithJSON writes v as a JSON document with the given status.
func (r *Responder) RespondWithJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	r.writeJSON(w, req, status, jsonContentType, v)
}

// RespondEmpty writes the status code without a body.
func (r *Responder) RespondEmpty(w http.ResponseWriter, status int) {
	if w != nil {
		w.WriteHeader(status)
	}
}

func (r *Responder) writeJSON(w http.ResponseWriter, req *http.Request, status int, contentType string, v any) {
	if w == nil {
		return
	}

	body, err := jsonutil.Marshal(v)
	if err != nil {
		r.Logger().ErrorContext(requestContext(req), "failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if len(body) == 0 || body[len(body)-1] != '\n' {
		body = append(body, '\n')
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.Logger().ErrorContext(requestContext(req), "failed to write response", "error", err)
	}
}

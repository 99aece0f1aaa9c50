package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/drblury/todoweaver/responder"
	"github.com/drblury/todoweaver/todo"
)

// Route patterns served by Handler.
const (
	CollectionPath = "/todos"
	ItemPattern    = "/todos/{id}"
	idParam        = "id"
)

// Option configures a Handler.
type Option func(*Handler)

// WithResponder replaces the responder used to render results. The handler
// installs its own error classifier on top of the supplied options, so pass
// a responder built with ResponderOptions when customising one.
func WithResponder(r *responder.Responder) Option {
	return func(h *Handler) {
		if r != nil {
			h.resp = r
		}
	}
}

// Handler serves the todo collection.
type Handler struct {
	store todo.Store
	resp  *responder.Responder
	mux   *http.ServeMux
}

// NewHandler returns a Handler backed by store.
func NewHandler(store todo.Store, opts ...Option) *Handler {
	if store == nil {
		panic("api: store cannot be nil")
	}
	h := &Handler{
		store: store,
		resp:  responder.NewResponder(ResponderOptions()...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.mux = h.routes()
	return h
}

// ResponderOptions returns the responder options the handler relies on.
func ResponderOptions(extra ...responder.ResponderOption) []responder.ResponderOption {
	return append([]responder.ResponderOption{responder.WithErrorClassifier(ClassifyError)}, extra...)
}

// ClassifyError maps store error kinds to HTTP statuses. Only the kind is
// inspected, never the message.
func ClassifyError(err error) (int, bool) {
	switch todo.KindOf(err) {
	case todo.KindInvalidInput:
		return http.StatusBadRequest, true
	case todo.KindNotFound:
		return http.StatusNotFound, true
	default:
		return http.StatusInternalServerError, true
	}
}

// ServeHTTP dispatches to the todo routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Register adds the todo routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET "+CollectionPath, h.List)
	mux.HandleFunc("POST "+CollectionPath, h.Create)
	mux.HandleFunc("DELETE "+CollectionPath, h.DeleteAll)
	mux.HandleFunc("DELETE "+CollectionPath+"/{$}", h.DeleteAll)
	mux.HandleFunc("OPTIONS "+CollectionPath, h.Options)
	mux.HandleFunc("GET "+ItemPattern, h.Get)
	mux.HandleFunc("PATCH "+ItemPattern, h.Update)
	mux.HandleFunc("PUT "+ItemPattern, h.Update)
	mux.HandleFunc("DELETE "+ItemPattern, h.Delete)
	mux.HandleFunc("OPTIONS "+ItemPattern, h.Options)
}

func (h *Handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

// Root serves the collection for GET / without a redirect round trip.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.List(w, r)
}

// List renders every todo as a JSON array.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to list todos")
		return
	}
	h.resp.RespondWithJSON(w, r, http.StatusOK, items)
}

// Get renders a single todo.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Get(r.Context(), r.PathValue(idParam))
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to get todo")
		return
	}
	h.resp.RespondWithJSON(w, r, http.StatusOK, item)
}

// Create stores the posted todo and answers 201 with the stored object.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to decode todo")
		return
	}

	item, err := h.store.Create(r.Context(), body, CollectionURL(r))
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to create todo")
		return
	}
	w.Header().Set("Location", item.URL())
	h.resp.RespondWithJSON(w, r, http.StatusCreated, item)
}

// Update merge-patches a todo and renders the state after the write.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(idParam)
	patch, err := decodeObject(r)
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to decode patch")
		return
	}

	item, err := h.store.MergeUpdate(r.Context(), id, patch)
	if err != nil {
		h.resp.HandleErrors(w, r, err, "failed to update todo")
		return
	}
	h.resp.RespondWithJSON(w, r, http.StatusOK, item)
}

// Delete removes a single todo.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue(idParam)); err != nil {
		h.resp.HandleErrors(w, r, err, "failed to delete todo")
		return
	}
	h.resp.RespondEmpty(w, http.StatusNoContent)
}

// DeleteAll empties the collection.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAll(r.Context()); err != nil {
		h.resp.HandleErrors(w, r, err, "failed to delete todos")
		return
	}
	h.resp.RespondEmpty(w, http.StatusNoContent)
}

// Options answers preflight and discovery requests with an empty 200.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	h.resp.RespondEmpty(w, http.StatusOK)
}

// decodeObject reads a JSON object body. Anything else is invalid input.
func decodeObject(r *http.Request) (todo.Todo, error) {
	var body map[string]any
	if err := responder.DecodeRequestBody(r, &body); err != nil {
		if errors.Is(err, responder.ErrEmptyBody) {
			return nil, todo.InvalidInput("request body is required")
		}
		return nil, todo.InvalidInput("body must be a JSON object: %v", err)
	}
	if body == nil {
		return nil, todo.InvalidInput("body must be a JSON object")
	}
	return todo.Todo(body), nil
}

// CollectionURL returns the absolute URL of the collection the request was
// sent to, honouring X-Forwarded-Proto and X-Forwarded-Host.
func CollectionURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwarded := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}

	return scheme + "://" + host + strings.TrimRight(r.URL.Path, "/")
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

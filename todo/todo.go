package todo

import "strings"

// Field names managed by the service.
const (
	FieldID        = "id"
	FieldURL       = "url"
	FieldCompleted = "completed"
)

// Todo is a single todo item. Values are whatever a JSON decoder produces
// for an object: strings, float64, bool, nil, []any and map[string]any.
type Todo map[string]any

// ID returns the identifier of the todo or an empty string when unset.
func (t Todo) ID() string {
	id, _ := t[FieldID].(string)
	return id
}

// URL returns the self locator of the todo or an empty string when unset.
func (t Todo) URL() string {
	u, _ := t[FieldURL].(string)
	return u
}

// Completed reports the completion flag. Non boolean values read as false.
func (t Todo) Completed() bool {
	done, _ := t[FieldCompleted].(bool)
	return done
}

// Clone returns a deep copy of the todo. Nested objects and arrays are
// copied as well so the clone shares no mutable state with t.
func (t Todo) Clone() Todo {
	if t == nil {
		return nil
	}
	out := make(Todo, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

// Prepare returns the object stored for a newly created todo: a copy of
// body with the managed fields set.
func Prepare(body Todo, id, baseURL string) Todo {
	out := body.Clone()
	if out == nil {
		out = Todo{}
	}
	out[FieldID] = id
	out[FieldCompleted] = false
	out[FieldURL] = ItemURL(baseURL, id)
	return out
}

// ItemURL joins the collection base URL and an id.
func ItemURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + id
}

// WithoutImmutable returns a copy of patch without the fields a client may
// never change after creation.
func WithoutImmutable(patch Todo) Todo {
	out := patch.Clone()
	delete(out, FieldID)
	delete(out, FieldURL)
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(typed))
		for k, inner := range typed {
			m[k] = cloneValue(inner)
		}
		return m
	case Todo:
		return typed.Clone()
	case []any:
		s := make([]any, len(typed))
		for i, inner := range typed {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

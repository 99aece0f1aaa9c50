package mongostore

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/drblury/todoweaver/todo"
)

const fieldObjectID = "_id"

// parseID converts a client id into the document key. Ids that are not
// ObjectID hex strings can never match a stored todo.
func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// checkFieldNames rejects top-level keys MongoDB cannot store as plain
// fields: the empty name, the reserved _id key, and names it would read as
// operators or dotted paths.
func checkFieldNames(item todo.Todo) error {
	for key := range item {
		if key == "" || key == fieldObjectID || strings.HasPrefix(key, "$") || strings.Contains(key, ".") {
			return todo.InvalidInput("field name %q is not supported", key)
		}
	}
	return nil
}

// toDocument builds the stored document for a prepared todo. The id lives
// only in _id.
func toDocument(item todo.Todo, oid primitive.ObjectID) bson.M {
	doc := make(bson.M, len(item)+1)
	for k, v := range item {
		if k == todo.FieldID || k == fieldObjectID {
			continue
		}
		doc[k] = v
	}
	doc[fieldObjectID] = oid
	return doc
}

// setDocument builds the $set payload for a patch.
func setDocument(patch todo.Todo) bson.M {
	set := make(bson.M, len(patch))
	for k, v := range patch {
		if k == fieldObjectID {
			continue
		}
		set[k] = v
	}
	return set
}

// fromDocument converts a decoded document into a todo with JSON friendly
// values.
func fromDocument(doc bson.M) todo.Todo {
	out := make(todo.Todo, len(doc))
	for k, v := range doc {
		if k == fieldObjectID {
			out[todo.FieldID] = idString(v)
			continue
		}
		out[k] = normalize(v)
	}
	return out
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func normalize(v any) any {
	switch typed := v.(type) {
	case primitive.M:
		m := make(map[string]any, len(typed))
		for k, inner := range typed {
			m[k] = normalize(inner)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(typed))
		for k, inner := range typed {
			m[k] = normalize(inner)
		}
		return m
	case primitive.D:
		m := make(map[string]any, len(typed))
		for _, e := range typed {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.A:
		s := make([]any, len(typed))
		for i, inner := range typed {
			s[i] = normalize(inner)
		}
		return s
	case []any:
		s := make([]any, len(typed))
		for i, inner := range typed {
			s[i] = normalize(inner)
		}
		return s
	case primitive.ObjectID:
		return typed.Hex()
	default:
		return v
	}
}

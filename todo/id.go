package todo

import "github.com/google/uuid"

// IDGenerator produces identifiers for new todos.
type IDGenerator func() string

// NewID returns a random (version 4) UUID in its canonical text form.
func NewID() string {
	return uuid.NewString()
}

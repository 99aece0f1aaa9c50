package todo

import "context"

// Store is the persistence capability behind the todo API. Implementations
// must be safe for concurrent use; point mutations are linearizable per id
// while List may return a slightly stale snapshot.
type Store interface {
	// Create stores a new todo built from body. It assigns the id, resets
	// completed to false and sets url to baseURL joined with the id. A nil
	// body fails with ErrInvalidInput, as does a field name the backend
	// cannot store: the memory store accepts any name, while the MongoDB
	// store rejects "", "_id", names starting with "$" and dotted names.
	Create(ctx context.Context, body Todo, baseURL string) (Todo, error)

	// List returns every stored todo in no particular order. An empty
	// collection yields an empty, non-nil slice.
	List(ctx context.Context) ([]Todo, error)

	// Get returns the todo with the given id.
	Get(ctx context.Context, id string) (Todo, error)

	// MergeUpdate merges patch into the stored todo atomically and returns
	// the state after the write. The id and url fields of patch are ignored.
	// Field names are checked the same way as in Create.
	MergeUpdate(ctx context.Context, id string, patch Todo) (Todo, error)

	// Delete removes the todo with the given id.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every todo. It never fails on an empty collection.
	DeleteAll(ctx context.Context) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close(ctx context.Context) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

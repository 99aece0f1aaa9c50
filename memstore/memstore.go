// Package memstore implements todo.Store on top of a map guarded by a
// read/write mutex. State lives as long as the Store value.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/drblury/todoweaver/todo"
)

// maxIDAttempts bounds how often Create redraws an id that is already taken.
const maxIDAttempts = 16

var errIDsExhausted = errors.New("id generator keeps returning taken ids")

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for new todos.
func WithIDGenerator(gen todo.IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSeed preloads todos. Each seed gets a fresh id and a url under
// baseURL, as if it had been created.
func WithSeed(baseURL string, seeds ...todo.Todo) Option {
	return func(s *Store) {
		for _, seed := range seeds {
			if seed == nil {
				continue
			}
			id, err := s.freeID()
			if err != nil {
				continue
			}
			s.items[id] = todo.Prepare(seed, id, baseURL)
		}
	}
}

// Store is an in-process todo.Store.
type Store struct {
	mu    sync.RWMutex
	items map[string]todo.Todo
	newID todo.IDGenerator
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		items: make(map[string]todo.Todo),
		newID: todo.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create stores a new todo built from body.
func (s *Store) Create(ctx context.Context, body todo.Todo, baseURL string) (todo.Todo, error) {
	if body == nil {
		return nil, todo.InvalidInput("body must be a JSON object")
	}
	if err := todo.CheckContext(ctx, "create"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freeID()
	if err != nil {
		return nil, err
	}

	item := todo.Prepare(body, id, baseURL)
	s.items[id] = item
	return item.Clone(), nil
}

// freeID draws ids until one is not taken. Callers hold the write lock.
func (s *Store) freeID() (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if _, taken := s.items[id]; !taken {
			return id, nil
		}
	}
	return "", todo.Internal("create", errIDsExhausted)
}

// List returns a snapshot of every todo.
func (s *Store) List(ctx context.Context) ([]todo.Todo, error) {
	if err := todo.CheckContext(ctx, "list"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]todo.Todo, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out, nil
}

// Get returns the todo stored under id.
func (s *Store) Get(ctx context.Context, id string) (todo.Todo, error) {
	if err := todo.RequireID(id); err != nil {
		return nil, err
	}
	if err := todo.CheckContext(ctx, "get"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, todo.NotFound(id)
	}
	return item.Clone(), nil
}

// MergeUpdate merges patch into the todo stored under id.
func (s *Store) MergeUpdate(ctx context.Context, id string, patch todo.Todo) (todo.Todo, error) {
	if err := todo.RequireID(id); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, todo.InvalidInput("patch must be a JSON object")
	}
	if err := todo.CheckContext(ctx, "merge update"); err != nil {
		return nil, err
	}
	patch = todo.WithoutImmutable(patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, todo.NotFound(id)
	}
	updated := todo.Merge(current, patch)
	s.items[id] = updated
	return updated.Clone(), nil
}

// Delete removes the todo stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := todo.RequireID(id); err != nil {
		return err
	}
	if err := todo.CheckContext(ctx, "delete"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return todo.NotFound(id)
	}
	delete(s.items, id)
	return nil
}

// DeleteAll removes every todo.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := todo.CheckContext(ctx, "delete all"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]todo.Todo)
	return nil
}

// Count returns the number of stored todos.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Ping always succeeds; the store has no external dependency.
func (s *Store) Ping(context.Context) error {
	return nil
}

var (
	_ todo.Store  = (*Store)(nil)
	_ todo.Pinger = (*Store)(nil)
)

// Package storetest holds the behavioural contract every todo.Store backend
// must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/todoweaver/todo"
)

// BaseURL is the collection locator used when creating todos.
const BaseURL = "http://todo.test/todos"

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) todo.Store

// Options tune the contract for a backend.
type Options struct {
	// MissingID is an id that is well formed for the backend but absent.
	MissingID string
	// Concurrency is the number of parallel writers in the race tests.
	Concurrency int
}

// Run executes the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory, opts Options) {
	t.Helper()
	if opts.MissingID == "" {
		opts.MissingID = "does-not-exist"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 16
	}

	t.Run("create then get returns the created todo", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, todo.Todo{"title": "buy milk"}, BaseURL)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID())
		assert.Equal(t, "buy milk", created["title"])
		assert.Equal(t, false, created[todo.FieldCompleted])
		assert.Equal(t, todo.ItemURL(BaseURL, created.ID()), created.URL())

		got, err := s.Get(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("create overrides managed fields", func(t *testing.T) {
		s := newStore(t)

		created, err := s.Create(context.Background(), todo.Todo{
			"title": "x", "completed": true, "id": "mine", "url": "elsewhere",
		}, BaseURL)
		require.NoError(t, err)

		assert.NotEqual(t, "mine", created.ID())
		assert.False(t, created.Completed())
		assert.Equal(t, todo.ItemURL(BaseURL, created.ID()), created.URL())
	})

	t.Run("create keeps nested client data", func(t *testing.T) {
		s := newStore(t)
		body := todo.Todo{
			"title": "nested",
			"meta":  map[string]any{"tags": []any{"a", "b"}, "priority": float64(2)},
		}

		created, err := s.Create(context.Background(), body, BaseURL)
		require.NoError(t, err)

		got, err := s.Get(context.Background(), created.ID())
		require.NoError(t, err)
		assert.Equal(t, body["meta"], got["meta"])
	})

	t.Run("create rejects nil body", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Create(context.Background(), nil, BaseURL)
		assert.ErrorIs(t, err, todo.ErrInvalidInput)
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newStore(t)
		seen := map[string]struct{}{}
		for i := range 20 {
			created, err := s.Create(context.Background(), todo.Todo{"n": float64(i)}, BaseURL)
			require.NoError(t, err)
			_, dup := seen[created.ID()]
			require.False(t, dup)
			seen[created.ID()] = struct{}{}
		}
	})

	t.Run("list empty collection", func(t *testing.T) {
		s := newStore(t)

		items, err := s.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("list returns every todo", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := map[string]todo.Todo{}
		for i := range 3 {
			created, err := s.Create(ctx, todo.Todo{"title": fmt.Sprintf("t%d", i)}, BaseURL)
			require.NoError(t, err)
			want[created.ID()] = created
		}

		items, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, len(want))
		for _, item := range items {
			assert.Equal(t, want[item.ID()], item)
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Get(ctx, opts.MissingID)
		assert.ErrorIs(t, err, todo.ErrNotFound)

		_, err = s.MergeUpdate(ctx, opts.MissingID, todo.Todo{"title": "b"})
		assert.ErrorIs(t, err, todo.ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, opts.MissingID), todo.ErrNotFound)
	})

	t.Run("empty ids are invalid", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, todo.ErrInvalidInput)

		_, err = s.MergeUpdate(ctx, "", todo.Todo{"title": "b"})
		assert.ErrorIs(t, err, todo.ErrInvalidInput)

		assert.ErrorIs(t, s.Delete(ctx, ""), todo.ErrInvalidInput)
	})

	t.Run("merge update overwrites only supplied fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a", "order": float64(1)}, BaseURL)
		require.NoError(t, err)

		updated, err := s.MergeUpdate(ctx, created.ID(), todo.Todo{"title": "b"})
		require.NoError(t, err)

		want := created.Clone()
		want["title"] = "b"
		assert.Equal(t, want, updated)

		got, err := s.Get(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("merge update can complete a todo", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		updated, err := s.MergeUpdate(ctx, created.ID(), todo.Todo{"completed": true})
		require.NoError(t, err)
		assert.True(t, updated.Completed())
	})

	t.Run("merge update ignores immutable fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		updated, err := s.MergeUpdate(ctx, created.ID(), todo.Todo{"id": "other", "url": "other"})
		require.NoError(t, err)
		assert.Equal(t, created, updated)
	})

	t.Run("merge update with empty patch returns current state", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		updated, err := s.MergeUpdate(ctx, created.ID(), todo.Todo{})
		require.NoError(t, err)
		assert.Equal(t, created, updated)
	})

	t.Run("merge update rejects nil patch", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		_, err = s.MergeUpdate(ctx, created.ID(), nil)
		assert.ErrorIs(t, err, todo.ErrInvalidInput)
	})

	t.Run("delete twice reports not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created.ID()))
		assert.ErrorIs(t, s.Delete(ctx, created.ID()), todo.ErrNotFound)

		_, err = s.Get(ctx, created.ID())
		assert.ErrorIs(t, err, todo.ErrNotFound)
	})

	t.Run("delete all empties the collection", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for range 3 {
			_, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
			require.NoError(t, err)
		}

		require.NoError(t, s.DeleteAll(ctx))
		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		require.NoError(t, s.DeleteAll(ctx))
	})

	t.Run("returned todos are detached copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "a"}, BaseURL)
		require.NoError(t, err)

		created["title"] = "mutated"

		got, err := s.Get(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, "a", got["title"])
	})

	t.Run("concurrent patches to distinct fields are all applied", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, todo.Todo{"title": "race"}, BaseURL)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, opts.Concurrency)
		for i := range opts.Concurrency {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := s.MergeUpdate(ctx, created.ID(), todo.Todo{fmt.Sprintf("field%d", n): float64(n)})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Get(ctx, created.ID())
		require.NoError(t, err)
		for i := range opts.Concurrency {
			assert.Equal(t, float64(i), got[fmt.Sprintf("field%d", i)])
		}
		assert.Equal(t, "race", got["title"])
	})

	t.Run("concurrent creates and deletes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		ids := make(chan string, opts.Concurrency)
		for range opts.Concurrency {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := s.Create(ctx, todo.Todo{"title": "c"}, BaseURL)
				if err == nil {
					ids <- created.ID()
				}
			}()
		}
		wg.Wait()
		close(ids)

		var deleted sync.WaitGroup
		for id := range ids {
			deleted.Add(1)
			go func(id string) {
				defer deleted.Done()
				assert.NoError(t, s.Delete(ctx, id))
			}(id)
		}
		deleted.Wait()

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("cancelled context aborts writes", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Create(ctx, todo.Todo{"title": "never"}, BaseURL)
		require.Error(t, err)

		items, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

package todo

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by a Store wraps exactly one of them.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("todo not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)

// Kind classifies store failures.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// KindOf reports the kind of err. Errors that wrap none of the sentinels are
// internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}

// InvalidInput returns an error of kind KindInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns the error reported for an unknown id.
func NotFound(id string) error {
	return fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// Unavailable wraps a backend failure as KindStoreUnavailable. The cause stays
// reachable through errors.Is and errors.As.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, cause)
}

// Internal wraps an unexpected failure as KindInternal.
func Internal(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, cause)
}

// CheckContext returns an internal error wrapping ctx.Err() when the context
// is already done.
func CheckContext(ctx context.Context, op string) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return Internal(op, err)
	}
	return nil
}

// RequireID rejects an empty identifier.
func RequireID(id string) error {
	if id == "" {
		return InvalidInput("id is required")
	}
	return nil
}

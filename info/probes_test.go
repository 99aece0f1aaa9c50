package info

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunChecks(t *testing.T) {
	handler := NewHandler()

	t.Run("no checks", func(t *testing.T) {
		if err := handler.runChecks(context.Background(), nil); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("every check runs even after a failure", func(t *testing.T) {
		var calls atomic.Int32
		first := errors.New("store down")
		second := errors.New("disk full")
		err := handler.runChecks(context.Background(), []Check{
			{Name: "store", Probe: func(context.Context) error { calls.Add(1); return first }},
			{Name: "noop", Probe: func(context.Context) error { calls.Add(1); return nil }},
			{Name: "disk", Probe: func(context.Context) error { calls.Add(1); return second }},
		})
		if calls.Load() != 3 {
			t.Fatalf("expected three checks to run, ran %d", calls.Load())
		}
		if !errors.Is(err, first) || !errors.Is(err, second) {
			t.Fatalf("expected both failures to be joined, got %v", err)
		}
		if got := err.Error(); got != "store: store down\ndisk: disk full" {
			t.Fatalf("expected failures in registration order, got %q", got)
		}
	})

	t.Run("deadline is reported with the timeout", func(t *testing.T) {
		h := NewHandler(WithProbeTimeout(10 * time.Millisecond))
		err := h.runChecks(context.Background(), []Check{{Name: "mongo", Probe: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}})
		if err == nil || err.Error() != "mongo timed out after 10ms" {
			t.Fatalf("expected timeout error, got %v", err)
		}
	})

	t.Run("cancellation", func(t *testing.T) {
		err := handler.runChecks(context.Background(), []Check{{Name: "mongo", Probe: func(context.Context) error {
			return context.Canceled
		}}})
		if err == nil || !strings.Contains(err.Error(), "mongo was cancelled") {
			t.Fatalf("expected cancellation error, got %v", err)
		}
	})
}

func TestAppendCheck(t *testing.T) {
	noop := func(context.Context) error { return nil }

	checks := appendCheck(nil, " store ", noop)
	checks = appendCheck(checks, "skipped", nil)
	checks = appendCheck(checks, "", noop)

	if len(checks) != 2 {
		t.Fatalf("expected nil probes to be dropped, got %d checks", len(checks))
	}
	if checks[0].Name != "store" {
		t.Fatalf("expected trimmed name, got %q", checks[0].Name)
	}
	if checks[1].Name != "check 2" {
		t.Fatalf("expected generated name, got %q", checks[1].Name)
	}
}

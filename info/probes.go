package info

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Check is a named liveness or readiness probe. The name identifies the
// failing dependency in the problem detail returned by the probe endpoints.
type Check struct {
	Name  string
	Probe ProbeFunc
}

type probePayload struct {
	Status string   `json:"status"`
	Checks []string `json:"checks,omitempty"`
}

func (h *Handler) respondProbe(w http.ResponseWriter, r *http.Request, state string, checks []Check) {
	payload := probePayload{Status: state}
	for _, c := range checks {
		payload.Checks = append(payload.Checks, c.Name)
	}
	h.RespondWithJSON(w, r, http.StatusOK, payload)
}

// runChecks runs every check concurrently under the probe timeout and joins
// the failures in registration order.
func (h *Handler) runChecks(ctx context.Context, checks []Check) error {
	if len(checks) == 0 {
		return nil
	}

	timeout := h.probeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failures := make([]error, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			err := c.Probe(probeCtx)
			switch {
			case err == nil:
			case errors.Is(err, context.DeadlineExceeded):
				failures[i] = fmt.Errorf("%s timed out after %s", c.Name, timeout)
			case errors.Is(err, context.Canceled):
				failures[i] = fmt.Errorf("%s was cancelled", c.Name)
			default:
				failures[i] = fmt.Errorf("%s: %w", c.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(failures...)
}

func appendCheck(checks []Check, name string, fn ProbeFunc) []Check {
	if fn == nil {
		return checks
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("check %d", len(checks)+1)
	}
	return append(checks, Check{Name: name, Probe: fn})
}

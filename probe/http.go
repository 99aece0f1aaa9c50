package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/drblury/todoweaver/jsonutil"
)

// maxProbeBody caps how much of a probe response is read.
const maxProbeBody = 64 << 10

// HTTPDoer represents the subset of *http.Client required by the HTTP probe.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPOption configures NewHTTPProbe.
type HTTPOption func(*httpProbe)

type httpProbe struct {
	client   HTTPDoer
	method   string
	header   http.Header
	statuses []int
	state    string
}

// WithClient overrides http.DefaultClient.
func WithClient(client HTTPDoer) HTTPOption {
	return func(p *httpProbe) {
		if client != nil {
			p.client = client
		}
	}
}

// WithMethod overrides GET.
func WithMethod(method string) HTTPOption {
	return func(p *httpProbe) {
		if m := strings.ToUpper(strings.TrimSpace(method)); m != "" {
			p.method = m
		}
	}
}

// WithHeader sets a header on the probe request.
func WithHeader(key, value string) HTTPOption {
	return func(p *httpProbe) {
		p.header.Set(key, value)
	}
}

// WithStatuses accepts only the listed status codes instead of any 2xx.
func WithStatuses(statuses ...int) HTTPOption {
	return func(p *httpProbe) {
		p.statuses = append(p.statuses[:0], statuses...)
	}
}

// WithReportedState additionally requires a JSON body whose "status" field
// equals state, the shape served by the info probe endpoints.
func WithReportedState(state string) HTTPOption {
	return func(p *httpProbe) {
		p.state = state
	}
}

// probeBody is the subset of probe payloads and problem documents the HTTP
// probe understands.
type probeBody struct {
	Status any    `json:"status"`
	Detail string `json:"detail"`
}

// NewHTTPProbe creates a Func that requests target, typically the /readyz
// route of a running todo service. It succeeds on a 2xx status unless
// options say otherwise. When the server answers with a problem document
// its detail is part of the returned error.
func NewHTTPProbe(target string, opts ...HTTPOption) Func {
	p := &httpProbe{
		client: http.DefaultClient,
		method: http.MethodGet,
		header: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	target = strings.TrimSpace(target)

	return func(ctx context.Context) error {
		if target == "" {
			return errors.New("http probe: target URL is required")
		}

		req, err := http.NewRequestWithContext(orBackground(ctx), p.method, target, nil)
		if err != nil {
			return fmt.Errorf("http probe %s: %w", target, err)
		}
		for k, v := range p.header {
			req.Header[k] = slices.Clone(v)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("http probe %s: %w", target, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
		if err != nil {
			return fmt.Errorf("http probe %s: reading response: %w", target, err)
		}
		return p.check(target, resp.StatusCode, body)
	}
}

func (p *httpProbe) check(target string, status int, body []byte) error {
	var payload probeBody
	decoded := len(body) > 0 && jsonutil.Unmarshal(body, &payload) == nil

	if !p.statusOK(status) {
		msg := fmt.Sprintf("http probe %s: unexpected status %d %s", target, status, http.StatusText(status))
		if decoded && payload.Detail != "" {
			msg += ": " + payload.Detail
		}
		return errors.New(msg)
	}

	if p.state == "" {
		return nil
	}
	if !decoded {
		return fmt.Errorf("http probe %s: response is not a probe payload", target)
	}
	if got, _ := payload.Status.(string); got != p.state {
		return fmt.Errorf("http probe %s: reported %v, want %q", target, payload.Status, p.state)
	}
	return nil
}

func (p *httpProbe) statusOK(status int) bool {
	if len(p.statuses) > 0 {
		return slices.Contains(p.statuses, status)
	}
	return status >= 200 && status < 300
}

// Package probe issues single readiness checks against the worker's health
// endpoint. Transport errors are data here, not failures: every way a probe
// can go wrong collapses to NotReady.
package probe

import (
	"context"
	"net/http"
	"time"

	helpers "github.com/caw-hq/caw-desktop/pkg/shared"
)

type Result int

const (
	NotReady Result = iota
	Ready
)

func (r Result) String() string {
	if r == Ready {
		return "ready"
	}
	return "not-ready"
}

// Prober performs one bounded GET per Probe call. Retries and back-off
// policy belong to the caller.
type Prober struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string, timeout time.Duration) *Prober {
	return &Prober{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithClient replaces the HTTP client, mainly for tests.
func (p *Prober) WithClient(client *http.Client) *Prober {
	p.client = client
	return p
}

// Probe issues a single request to the health endpoint. Any transport
// error, timeout, or non-2xx status reports NotReady; a 2xx reports Ready.
func (p *Prober) Probe(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return NotReady
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return NotReady
	}
	defer helpers.CloseOrLog(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Ready
	}
	return NotReady
}

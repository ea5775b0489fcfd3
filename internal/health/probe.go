package health

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Upper bound on the response body drained before the connection is closed.
const maxDrain = 64 << 10

// Checks an HTTP endpoint.
type Prober struct {
	client *http.Client
}

// Creates a prober whose requests give up after timeout. A zero timeout
// means no limit beyond the context.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Sends one GET request to url and returns nil for a 2xx response.
func (p *Prober) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %s", ErrUnhealthy, url, resp.Status)
	}

	slog.Debug("health check passed", "url", url, "status", resp.StatusCode)
	return nil
}

// Waits for delay, then probes url once.
func (p *Prober) ProbeAfter(ctx context.Context, url string, delay time.Duration) error {
	if delay > 0 {
		slog.Info("waiting before health check", "delay", delay)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrUnhealthy, ctx.Err())
		}
	}
	return p.Probe(ctx, url)
}

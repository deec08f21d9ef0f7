// Package webhook delivers decode completion notices over HTTP POST.
//
// The event is serialized as JSON and posted to a configured endpoint.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; 4xx responses fail immediately.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/justapithecus/seam/adapter"
	"github.com/justapithecus/seam/iox"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the webhook adapter.
type Config struct {
	// URL is the endpoint events are posted to (required).
	URL string
	// Headers are extra HTTP headers set on every request.
	Headers map[string]string
	// Timeout bounds each individual request (default 10s).
	Timeout time.Duration
	// Retries is how many times a failed delivery is reattempted (default 3).
	Retries int
}

// Adapter posts decode completion events to an HTTP endpoint.
type Adapter struct {
	cfg Config
	hc  *http.Client
}

// New builds a webhook adapter. The config URL must be set.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Adapter{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Publish posts the event as JSON. Network errors and 5xx responses are
// retried up to cfg.Retries times with doubling backoff; a 4xx response
// aborts the delivery on the spot.
func (a *Adapter) Publish(ctx context.Context, event *adapter.DecodeCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: encode event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.cfg.Retries; attempt++ {
		if attempt == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("webhook: context canceled: %w", err)
			}
		} else if err := sleepCtx(ctx, backoffDelay(attempt)); err != nil {
			return fmt.Errorf("webhook: context canceled during backoff: %w", err)
		}

		lastErr = a.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if !retriable(lastErr) {
			return fmt.Errorf("webhook: non-retriable error: %w", lastErr)
		}
	}

	return fmt.Errorf("webhook: failed after %d attempts: %w", a.cfg.Retries+1, lastErr)
}

// backoffDelay doubles from 500ms: 500ms, 1s, 2s, ...
func backoffDelay(attempt int) time.Duration {
	return (500 * time.Millisecond) << uint(attempt-1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retriable reports whether the delivery is worth reattempting.
// Client errors (4xx) are not; everything else is.
func retriable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return false
	}
	return true
}

// StatusError carries a non-2xx response code so callers can tell
// retriable (5xx) from non-retriable (4xx) failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// post performs one delivery attempt, returning nil on any 2xx.
func (a *Adapter) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}

	return nil
}

// Close releases idle connections held by the HTTP client.
func (a *Adapter) Close() error {
	a.hc.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)

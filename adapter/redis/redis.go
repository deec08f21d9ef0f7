// Package redis delivers decode completion notices over Redis pub/sub.
//
// The event is serialized as JSON and PUBLISHed to a configured channel.
// Connection failures are retried with exponential backoff.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/seam/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "seam:decode_completed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis pub/sub adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel events land on (default: seam:decode_completed).
	Channel string
	// Timeout bounds each PUBLISH call (default 5s).
	Timeout time.Duration
	// Retries is how many times a failed publish is reattempted (default 3).
	Retries int
}

// Adapter publishes decode completion events to a Redis channel.
type Adapter struct {
	cfg Config
	rdb *goredis.Client
}

// New builds a Redis adapter. The config URL must be set and parseable.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Adapter{
		cfg: cfg,
		rdb: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON to the configured channel, retrying
// failed attempts with doubling backoff. Each attempt runs under its
// own timeout so a hung connection cannot stall the whole delivery.
func (a *Adapter) Publish(ctx context.Context, event *adapter.DecodeCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: encode event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.cfg.Retries; attempt++ {
		if attempt == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("redis: context canceled: %w", err)
			}
		} else if err := sleepCtx(ctx, backoffDelay(attempt)); err != nil {
			return fmt.Errorf("redis: context canceled during backoff: %w", err)
		}

		lastErr = a.publishOnce(ctx, payload)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", a.cfg.Retries+1, lastErr)
}

func (a *Adapter) publishOnce(ctx context.Context, payload []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return a.rdb.Publish(pubCtx, a.cfg.Channel, payload).Err()
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

// Close tears down the underlying Redis client.
func (a *Adapter) Close() error {
	return a.rdb.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)

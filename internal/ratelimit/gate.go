// Package ratelimit provides the per-provider call gate. Each provider
// client owns exactly one Gate, constructed at process start, so every
// call site in the process is serialized and spaced regardless of how
// many components hold the client.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate enforces a minimum interval between calls to one provider.
type Gate struct {
	limiter *rate.Limiter
	backoff time.Duration
}

// DefaultBackoff is the extra sleep applied after a rate-limit response.
const DefaultBackoff = 5 * time.Second

// New builds a gate spacing calls at least minInterval apart.
func New(minInterval time.Duration) *Gate {
	if minInterval <= 0 {
		minInterval = time.Millisecond
	}
	return &Gate{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		backoff: DefaultBackoff,
	}
}

// NewWithBackoff builds a gate with a custom rate-limit backoff.
func NewWithBackoff(minInterval, backoff time.Duration) *Gate {
	g := New(minInterval)
	if backoff > 0 {
		g.backoff = backoff
	}
	return g
}

// Acquire blocks until a call slot is available or the context ends.
func (g *Gate) Acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return g.limiter.Wait(ctx)
}

// Penalize sleeps the rate-limit backoff after the provider signaled 429.
// The caller still propagates its error afterwards; this only spaces the
// next attempt.
func (g *Gate) Penalize(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-time.After(g.backoff):
	case <-ctx.Done():
	}
}

// ratelimit.go enforces OKX's published per-connection WebSocket trading
// limits: 60 order-placement/amend requests per 2 seconds and 60 cancel
// requests per 2 seconds, refilling continuously rather than in 2s
// bursts.
//
// Retuned from the teacher's internal/exchange/ratelimit.go, which routed
// three Polymarket REST categories (Order/Cancel/Book) through a
// RateLimiter struct whose fields callers picked between themselves.
// Here the routing moves into the limiter: Broker.Send calls Wait with
// the kind of the ClientEvent it is about to send, and rateLimiter — not the
// broker — decides which bucket that action draws from.
package okx

import (
	"context"
	"sync"
	"time"

	"okx-trading-core/pkg/types"
)

// rateLimiter pairs the order and cancel buckets Send draws from.
type rateLimiter struct {
	order  *tokenBucket
	cancel *tokenBucket
}

// NewRateLimiter builds the order/cancel pair tuned to OKX's limits.
func NewRateLimiter() *rateLimiter {
	return &rateLimiter{
		order:  newTokenBucket(60, 30),
		cancel: newTokenBucket(60, 30),
	}
}

// Wait blocks until the bucket for kind has a token, or ctx is cancelled.
// Cancel actions draw from the cancel bucket; every other ClientEventKind
// (place, amend) draws from the order bucket.
func (r *rateLimiter) Wait(ctx context.Context, kind types.ClientEventKind) error {
	if kind == types.ClientCancel {
		return r.cancel.Wait(ctx)
	}
	return r.order.Wait(ctx)
}

// tokenBucket is a token-bucket rate limiter with continuous refill.
// Callers block in Wait() until a token is available or ctx is cancelled.
// Unexported: nothing outside this package constructs one directly, it's
// only ever reached through rateLimiter.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens refilled per second
	lastTime time.Time
}

func newTokenBucket(capacity, ratePerSecond float64) *tokenBucket {
	return &tokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

func (tb *tokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

package okx

import (
	"context"
	"testing"
	"time"

	"okx-trading-core/pkg/types"
)

func TestNewTokenBucketStartsFull(t *testing.T) {
	t.Parallel()
	tb := newTokenBucket(10, 1)
	if tb.tokens != 10 {
		t.Errorf("tokens = %v, want 10", tb.tokens)
	}
}

func TestTokenBucketWaitImmediate(t *testing.T) {
	t.Parallel()
	tb := newTokenBucket(5, 1)
	for i := 0; i < 5; i++ {
		start := time.Now()
		if err := tb.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() returned error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("Wait() took %v, expected immediate (token %d)", elapsed, i)
		}
	}
}

func TestTokenBucketWaitBlocksForRefill(t *testing.T) {
	t.Parallel()
	tb := newTokenBucket(1, 10) // 1 token capacity, refills at 10/sec

	if err := tb.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond || elapsed > 300*time.Millisecond {
		t.Errorf("expected blocking ~100ms, got %v", elapsed)
	}
}

func TestTokenBucketContextCancelled(t *testing.T) {
	t.Parallel()
	tb := newTokenBucket(1, 0.1)
	_ = tb.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := tb.Wait(ctx); err == nil {
		t.Error("expected context error, got nil")
	}
}

func TestNewRateLimiterIsTunedToOkxLimits(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter()
	if rl.order.capacity != 60 || rl.order.rate != 30 {
		t.Errorf("order bucket = capacity %v rate %v, want 60/30", rl.order.capacity, rl.order.rate)
	}
	if rl.cancel.capacity != 60 || rl.cancel.rate != 30 {
		t.Errorf("cancel bucket = capacity %v rate %v, want 60/30", rl.cancel.capacity, rl.cancel.rate)
	}
}

// TestRateLimiterWaitRoutesByKind exhausts the cancel bucket and confirms
// a place request still goes through immediately, proving Wait picks the
// bucket independently per ClientEventKind rather than sharing one.
func TestRateLimiterWaitRoutesByKind(t *testing.T) {
	t.Parallel()
	rl := &rateLimiter{
		order:  newTokenBucket(5, 1),
		cancel: newTokenBucket(1, 1),
	}

	if err := rl.Wait(context.Background(), types.ClientCancel); err != nil {
		t.Fatalf("first cancel wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx, types.ClientCancel); err == nil {
		t.Error("expected second cancel wait to block past the exhausted bucket, got nil error")
	}

	if err := rl.Wait(context.Background(), types.ClientPlaceMarket); err != nil {
		t.Errorf("place request should use the untouched order bucket, got: %v", err)
	}
}

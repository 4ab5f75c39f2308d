package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"fermata/internal/ratelimit"
)

func TestAcquireSpacesCalls(t *testing.T) {
	gate := ratelimit.New(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := gate.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 100*time.Millisecond {
		t.Fatalf("three calls finished in %v, expected at least 100ms of spacing", elapsed)
	}
}

func TestAcquireHonorsContextCancel(t *testing.T) {
	gate := ratelimit.New(time.Hour)
	ctx := context.Background()
	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := gate.Acquire(cancelCtx); err == nil {
		t.Fatal("expected context error for second Acquire")
	}
}

func TestPenalizeReturnsOnCancel(t *testing.T) {
	gate := ratelimit.NewWithBackoff(time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gate.Penalize(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Penalize did not observe cancellation")
	}
}

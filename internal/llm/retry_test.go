package llm

import (
	"context"
	"testing"
	"time"
)

func TestBackoffPolicyDelay(t *testing.T) {
	t.Parallel()

	policy := BackoffPolicy{MaxRetries: 4, BaseDelay: time.Second, Factor: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{-1, 0},
	}

	for _, tt := range tests {
		if got := policy.Delay(tt.attempt); got != tt.want {
			t.Fatalf("Delay(%d): got %v want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffPolicyDelayJitterBounds(t *testing.T) {
	t.Parallel()

	policy := BackoffPolicy{MaxRetries: 3, BaseDelay: time.Second, Factor: 2, Jitter: true}

	for attempt := 0; attempt < 3; attempt++ {
		base := time.Second
		for i := 0; i < attempt; i++ {
			base *= 2
		}
		for i := 0; i < 50; i++ {
			got := policy.Delay(attempt)
			if got < base || got > base+base/2 {
				t.Fatalf("Delay(%d): got %v outside [%v, %v]", attempt, got, base, base+base/2)
			}
		}
	}
}

func TestBackoffPolicyDelayZeroBase(t *testing.T) {
	t.Parallel()

	policy := BackoffPolicy{MaxRetries: 2}
	if got := policy.Delay(1); got != 0 {
		t.Fatalf("Delay(1) with zero base: got %v want 0", got)
	}
}

func TestBackoffPolicyExhausted(t *testing.T) {
	t.Parallel()

	policy := BackoffPolicy{MaxRetries: 3}

	tests := []struct {
		attempt int
		want    bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{4, true},
	}

	for _, tt := range tests {
		if got := policy.Exhausted(tt.attempt); got != tt.want {
			t.Fatalf("Exhausted(%d): got %v want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepWithContext(ctx, time.Minute); err != context.Canceled {
		t.Fatalf("sleepWithContext on cancelled ctx: got %v want %v", err, context.Canceled)
	}
}

func TestSleepWithContextZeroDuration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Zero duration never consults the context.
	if err := sleepWithContext(ctx, 0); err != nil {
		t.Fatalf("sleepWithContext(ctx, 0): got %v want nil", err)
	}
}

package llm

import (
	"context"
	"math/rand"
	"time"
)

// BackoffPolicy is a pure description of a retry schedule. The calling
// loop owns the sleeping, which keeps the policy testable without a
// network or a clock.
type BackoffPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Factor     int
	Jitter     bool
}

// Retry schedules for the two retryable failure classes.
var (
	rateLimitPolicy = BackoffPolicy{MaxRetries: 4, BaseDelay: time.Second, Factor: 2}
	transientPolicy = BackoffPolicy{MaxRetries: 3, BaseDelay: time.Second, Factor: 2, Jitter: true}
)

// Delay returns the backoff before retry attempt n (0-based). Jitter
// adds up to half the computed delay.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 || p.BaseDelay <= 0 {
		return 0
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= time.Duration(factor)
	}
	if p.Jitter {
		d += time.Duration(rand.Int63n(int64(d)/2 + 1))
	}
	return d
}

// Exhausted reports whether attempt (0-based retry count) is past the
// policy's cap.
func (p BackoffPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

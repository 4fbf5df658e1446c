package llm

import (
	"context"
	"testing"
	"time"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Complete(_ context.Context, _ *Request) (*Response, error) {
	p.calls++
	return &Response{Text: "ok"}, nil
}

func TestThrottleDisabledNeverBlocks(t *testing.T) {
	t.Parallel()

	th := NewThrottle(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := th.Wait(ctx); err != nil {
			t.Fatalf("Wait on disabled throttle: %v", err)
		}
	}
}

func TestThrottleBurstThenBlocks(t *testing.T) {
	t.Parallel()

	// 60/min = 1/sec with a burst of 5: the burst passes immediately, the
	// next slot needs the better part of a second.
	th := NewThrottle(60)

	start := time.Now()
	for i := 0; i < defaultBurst; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait within burst: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("burst should not block, took %v", elapsed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatal("Wait past burst should block until the deadline")
	}
}

func TestThrottleWaitCancelled(t *testing.T) {
	t.Parallel()

	th := NewThrottle(1)
	for i := 0; i < defaultBurst; i++ {
		_ = th.Wait(context.Background())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatal("Wait on cancelled ctx: expected error")
	}
}

func TestThrottledWrapsProvider(t *testing.T) {
	t.Parallel()

	inner := &countingProvider{}
	p := Throttled(inner, NewThrottle(0))

	if got := p.Name(); got != "counting" {
		t.Fatalf("Name: got %q want %q", got, "counting")
	}

	resp, err := p.Complete(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if resp.Text != "ok" || inner.calls != 1 {
		t.Fatalf("inner provider not invoked: resp=%+v calls=%d", resp, inner.calls)
	}
}

func TestThrottledNilThrottlePassesThrough(t *testing.T) {
	t.Parallel()

	inner := &countingProvider{}
	if got := Throttled(inner, nil); got != Provider(inner) {
		t.Fatalf("Throttled(p, nil): got %T want the inner provider", got)
	}
}

func TestThrottledBlocksBeforeInnerCall(t *testing.T) {
	t.Parallel()

	inner := &countingProvider{}
	th := NewThrottle(1)
	for i := 0; i < defaultBurst; i++ {
		_ = th.Wait(context.Background())
	}

	p := Throttled(inner, th)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := p.Complete(ctx, &Request{}); err == nil {
		t.Fatal("Complete past the budget should fail on the throttle")
	}
	if inner.calls != 0 {
		t.Fatalf("inner provider must not be reached when throttled, calls=%d", inner.calls)
	}
}

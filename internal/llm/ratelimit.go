package llm

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// Throttle gates outbound completion calls so a run stays inside the
// provider's daily request budget. One Throttle is shared by every
// worker in a run; rate.Limiter handles the atomic bookkeeping.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle caps requests at perMinute. perMinute <= 0 disables
// throttling.
func NewThrottle(perMinute int) *Throttle {
	if perMinute <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), defaultBurst),
	}
}

// Wait blocks until a request slot is available or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil
	}
	if ctx == nil {
		return errors.New("llm: throttle: nil context")
	}
	return t.limiter.Wait(ctx)
}

// Throttled wraps a provider so every Complete call passes through the
// shared throttle first.
func Throttled(p Provider, t *Throttle) Provider {
	if t == nil {
		return p
	}
	return &throttledProvider{inner: p, throttle: t}
}

type throttledProvider struct {
	inner    Provider
	throttle *Throttle
}

func (p *throttledProvider) Name() string {
	if p == nil || p.inner == nil {
		return ""
	}
	return p.inner.Name()
}

func (p *throttledProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.inner == nil {
		return nil, errors.New("llm: nil provider")
	}
	if err := p.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Complete(ctx, req)
}

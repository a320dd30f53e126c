package model

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedModel delays generations until the shared limiter grants a token.
type RateLimitedModel struct {
	inner   Model
	limiter *rate.Limiter
}

var _ Model = (*RateLimitedModel)(nil)

// WithRateLimit wraps inner so that at most perMinute generations start per
// minute, with the given burst. A non-positive perMinute disables limiting.
func WithRateLimit(inner Model, perMinute float64, burst int) Model {
	if perMinute <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedModel{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), burst),
	}
}

// Generate implements Model. Waiting for the limiter honors ctx, so an agent
// timeout also bounds the time spent queued.
func (m *RateLimitedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if err := m.limiter.Wait(ctx); err != nil {
			errCh <- fmt.Errorf("rate limit: %w", err)
			return
		}
		respCh, innerErr := m.inner.Generate(ctx, req)
		if err := forward(ctx, respCh, innerErr, out); err != nil {
			errCh <- err
		}
	}()
	return out, errCh
}

// Info implements Model.
func (m *RateLimitedModel) Info() Info { return m.inner.Info() }

package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider throttles calls to the underlying provider so a
// concurrent pipeline does not trip provider-side rate limits before the
// retry layer even gets a chance.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a provider with a requests-per-minute limiter.
// A non-positive rpm returns the provider unchanged.
func WithRateLimit(p Provider, rpm int) Provider {
	if p == nil || rpm <= 0 {
		return p
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (r *RateLimitedProvider) Name() string { return r.inner.Name() }

func (r *RateLimitedProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Complete(ctx, prompt, opts)
}

func (r *RateLimitedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}

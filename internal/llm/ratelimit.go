package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// WithRateLimit waits for a token bucket before every request. A
// non-positive PerMinute returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.PerMinute <= 0 {
		return p
	}
	every := time.Duration(float64(time.Minute) / cfg.PerMinute)
	return &rateLimitedProvider{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(every), max(cfg.Burst, 1)),
	}
}

func (r *rateLimitedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// No token frees up before the deadline.
		return nil, &Error{Kind: KindRateLimited, Err: err}
	}
	return r.Provider.Generate(ctx, req)
}

package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retryProvider struct {
	Provider
	cfg RetryConfig
}

// WithRetry resends requests that fail with a retryable *Error. Invalid
// output is retried at most once; context errors never.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	return &retryProvider{Provider: p, cfg: cfg}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	wait := r.cfg.InitialWait
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		resp, err := r.Provider.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= r.cfg.MaxAttempts || ctx.Err() != nil {
			return nil, err
		}

		var e *Error
		if !errors.As(err, &e) || !e.Retryable() {
			return nil, err
		}
		if e.Kind == KindInvalidOutput {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}

		pause := jitter(wait)
		if e.RetryAfter > 0 {
			pause = e.RetryAfter
		}
		t := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}

		wait = time.Duration(float64(wait) * r.cfg.Multiplier)
		if r.cfg.MaxWait > 0 && wait > r.cfg.MaxWait {
			wait = r.cfg.MaxWait
		}
	}
}

// jitter spreads d by ±20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}

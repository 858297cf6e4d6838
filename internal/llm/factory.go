package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/store"
)

// NewProvider builds the configured provider and wraps it, outermost first,
// in a timeout, retries, the rate limiter and request logging. repo may be
// nil.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, repo, logger)
	p = WithRateLimit(p, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

type timeoutProvider struct {
	Provider
	d time.Duration
}

// WithTimeout bounds every Generate call. A non-positive d returns p.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, d: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Provider.Generate(ctx, req)
}

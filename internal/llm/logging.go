package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/store"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx in the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}

type loggingProvider struct {
	Provider
	name   string
	repo   store.EventRepo
	logger *zap.Logger
}

// WithLogging writes a log line and, when repo is non-nil, an LLM request
// event for every call. Event write failures are logged and ignored.
func WithLogging(p Provider, name string, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingProvider{Provider: p, name: name, repo: repo, logger: logger}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.Provider.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}

	log := l.logger.With(
		zap.String("provider", ev.Provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
	)
	if err != nil {
		ev.ErrorMessage = err.Error()
		log.Warn("llm request failed", zap.Error(err))
	} else {
		log.Info("llm request")
	}

	if l.repo != nil {
		if werr := l.repo.AppendLLMRequest(ctx, ev); werr != nil {
			l.logger.Warn("record llm request event", zap.Error(werr))
		}
	}
	return resp, err
}

// transcript renders a request for the event log.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	fmt.Fprintf(&b, "[user]\n%s\n", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "\n[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}

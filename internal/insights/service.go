package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/llm"
)

// ErrIncompleteReport is returned for reports with no answered questions.
var ErrIncompleteReport = errors.New("report has no answered questions")

// Service generates insights, synchronously or in the background.
type Service struct {
	provider llm.Provider
	cache    Cache
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	gen     Ticket
	cancel  context.CancelFunc
	pending *Insight
	err     error
	ready   bool
}

// Ticket identifies one background request.
type Ticket uint64

// NewService creates an insight service. A nil provider produces offline
// insights; a nil cache disables caching.
func NewService(provider llm.Provider, cache Cache, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cache: cache, cfg: cfg, logger: logger, now: time.Now}
}

// Generate returns guidance for r. A cached insight for the same
// fingerprint is reused. Provider failures fall back to offline guidance
// and are returned alongside it.
func (s *Service) Generate(ctx context.Context, r *assessment.Report) (*Insight, error) {
	if r == nil || r.Result.TotalQuestions == 0 {
		return nil, ErrIncompleteReport
	}
	if s.provider == nil {
		return Offline(r, s.now()), nil
	}

	key := Fingerprint(r)
	if s.cache != nil {
		in, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("insight cache lookup failed", zap.Error(err))
		} else if ok {
			s.logger.Debug("insight cache hit", zap.String("key", key))
			return in, nil
		}
	}

	in, err := s.generate(ctx, r)
	if err != nil {
		return Offline(r, s.now()), err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, in); err != nil {
			s.logger.Warn("insight cache store failed", zap.Error(err))
		}
	}
	return in, nil
}

// Request starts generation in the background and returns the ticket
// that claims its result. Only one insight is in flight: a new request
// cancels the previous one, whose result is then discarded.
func (s *Service) Request(ctx context.Context, r *assessment.Report) Ticket {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	t := s.gen
	s.cancel = cancel
	s.pending, s.err, s.ready = nil, nil, false
	s.mu.Unlock()

	go func() {
		defer cancel()
		in, err := s.Generate(ctx, r)
		s.mu.Lock()
		defer s.mu.Unlock()
		if t != s.gen {
			return
		}
		s.pending = in
		s.err = err
		s.ready = true
		s.cancel = nil
	}()
	return t
}

// Consume returns the result for t if it is ready. The slot is cleared
// after consumption. Results of superseded tickets are never returned.
func (s *Service) Consume(t Ticket) (*Insight, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || t != s.gen {
		return nil, false, nil
	}
	in, err := s.pending, s.err
	s.pending = nil
	s.err = nil
	s.ready = false
	return in, true, err
}

// Cancel abandons the request for t if it is still current.
func (s *Service) Cancel(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.gen {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.pending, s.err, s.ready = nil, nil, false
}

type insightOutput struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	FocusAreas []string `json:"focus_areas"`
	Activities []string `json:"activities"`
}

func (s *Service) generate(ctx context.Context, r *assessment.Report) (*Insight, error) {
	ctx = llm.WithPurpose(ctx, "insight")

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(r),
		Schema:      InsightSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("insight generation: %w", err)
	}

	var out insightOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse insight response: %w", err)
	}

	return &Insight{
		Summary:     out.Summary,
		Strengths:   nonNil(out.Strengths),
		FocusAreas:  nonNil(out.FocusAreas),
		Activities:  nonNil(out.Activities),
		Disclaimer:  assessment.Disclaimer,
		Source:      SourceLLM,
		GeneratedAt: s.now(),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

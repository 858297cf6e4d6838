package insights

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/llm"
)

func testReport(t *testing.T) *assessment.Report {
	t.Helper()
	res := assessment.ScoreResult{
		TotalScore:     14,
		TotalQuestions: 10,
		CategoryScores: map[catalog.Category]assessment.CategoryScore{
			catalog.CategoryEyeContact:    {Score: 2, Total: 5},
			catalog.CategoryCommunication: {Score: 12, Total: 5},
		},
	}
	level, pct, err := assessment.ClassifySupportLevel(res.TotalScore, res.TotalQuestions)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	return &assessment.Report{
		Result:     res,
		Percentage: pct,
		Level:      level,
		Trends:     assessment.CategoryTrends(res),
		Disclaimer: assessment.Disclaimer,
	}
}

const llmInsight = `{"summary":"Good progress overall.","strengths":["Eye Contact"],"focus_areas":["Communication"],"activities":["Read picture books together."]}`

func TestBuildUserMessage(t *testing.T) {
	msg := buildUserMessage(testReport(t))

	for _, want := range []string{
		"Questions answered: 10",
		"Total score: 14 of 30",
		"Intermediate",
		"Eye Contact: 87% (improving)",
		"Communication: 20% (needs support)",
		"not assessed",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestOffline(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := Offline(testReport(t), now)

	if in.Source != SourceOffline {
		t.Errorf("source = %q, want %q", in.Source, SourceOffline)
	}
	if in.Disclaimer != assessment.Disclaimer {
		t.Errorf("disclaimer = %q", in.Disclaimer)
	}
	if len(in.Strengths) != 1 || in.Strengths[0] != "Eye Contact" {
		t.Errorf("strengths = %v", in.Strengths)
	}
	if len(in.FocusAreas) != 1 || in.FocusAreas[0] != "Communication" {
		t.Errorf("focus areas = %v", in.FocusAreas)
	}
	if len(in.Activities) != 1 {
		t.Errorf("activities = %v, want one per focus area", in.Activities)
	}
	if !in.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %v, want %v", in.GeneratedAt, now)
	}
}

func TestGenerate_UsesProviderAndCache(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(llmInsight)})
	cache := NewMemoryCache()
	svc := NewService(mock, cache, DefaultConfig(), nil)
	report := testReport(t)

	in, err := svc.Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if in.Source != SourceLLM || in.Summary != "Good progress overall." {
		t.Errorf("insight = %+v", in)
	}
	if in.Disclaimer != assessment.Disclaimer {
		t.Error("expected disclaimer on generated insight")
	}

	call := mock.Requests()[0]
	if call.Schema != InsightSchema {
		t.Error("expected insight schema on request")
	}
	if call.System != systemPrompt {
		t.Error("expected insight system prompt")
	}

	// Same fingerprint is served from the cache; the mock has no responses left.
	again, err := svc.Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("cached generate: %v", err)
	}
	if again.Summary != in.Summary {
		t.Errorf("cached summary = %q", again.Summary)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestGenerate_ProviderFailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.Error{Kind: llm.KindUnavailable}})
	svc := NewService(mock, nil, DefaultConfig(), nil)

	in, err := svc.Generate(context.Background(), testReport(t))
	if !llm.IsKind(err, llm.KindUnavailable) {
		t.Fatalf("err = %v, want an unavailable provider error", err)
	}
	if in == nil || in.Source != SourceOffline {
		t.Fatalf("expected offline fallback, got %+v", in)
	}
}

func TestGenerate_NoProvider(t *testing.T) {
	svc := NewService(nil, nil, DefaultConfig(), nil)
	in, err := svc.Generate(context.Background(), testReport(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if in.Source != SourceOffline {
		t.Errorf("source = %q, want offline", in.Source)
	}
}

func TestGenerate_EmptyReport(t *testing.T) {
	svc := NewService(nil, nil, DefaultConfig(), nil)
	if _, err := svc.Generate(context.Background(), &assessment.Report{}); !errors.Is(err, ErrIncompleteReport) {
		t.Errorf("err = %v, want ErrIncompleteReport", err)
	}
}

func TestRequestConsume(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(llmInsight)})
	svc := NewService(mock, nil, DefaultConfig(), nil)

	if _, ok, _ := svc.Consume(0); ok {
		t.Fatal("nothing should be ready before a request")
	}

	ticket := svc.Request(context.Background(), testReport(t))
	in, err := waitConsume(t, svc, ticket)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if in.Source != SourceLLM {
		t.Errorf("source = %q", in.Source)
	}

	if _, ok, _ := svc.Consume(ticket); ok {
		t.Error("slot should be cleared after consume")
	}
}

// gatedProvider blocks each call until release is closed or the call's
// context ends.
type gatedProvider struct {
	started   chan struct{}
	cancelled chan struct{}
	release   chan struct{}
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		started:   make(chan struct{}, 4),
		cancelled: make(chan struct{}, 4),
		release:   make(chan struct{}),
	}
}

func (p *gatedProvider) ModelID() string { return "gated" }

func (p *gatedProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.started <- struct{}{}
	select {
	case <-p.release:
		return &llm.Response{Content: json.RawMessage(llmInsight)}, nil
	case <-ctx.Done():
		p.cancelled <- struct{}{}
		return nil, ctx.Err()
	}
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func waitConsume(t *testing.T, svc *Service, ticket Ticket) (*Insight, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if in, ok, err := svc.Consume(ticket); ok {
			return in, err
		}
		if time.Now().After(deadline) {
			t.Fatal("insight never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequest_SupersededResultIsDropped(t *testing.T) {
	p := newGatedProvider()
	svc := NewService(p, nil, DefaultConfig(), nil)
	ctx := context.Background()

	first := svc.Request(ctx, testReport(t))
	waitFor(t, p.started, "first call")
	second := svc.Request(ctx, testReport(t))
	waitFor(t, p.cancelled, "first call to be cancelled")
	waitFor(t, p.started, "second call")

	if _, ok, _ := svc.Consume(first); ok {
		t.Fatal("superseded ticket must not see a result")
	}

	close(p.release)
	in, err := waitConsume(t, svc, second)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if in.Source != SourceLLM {
		t.Errorf("source = %q, want llm", in.Source)
	}
	if _, ok, _ := svc.Consume(first); ok {
		t.Error("superseded ticket must not see a result")
	}
}

func TestCancel_DiscardsInFlightResult(t *testing.T) {
	p := newGatedProvider()
	svc := NewService(p, nil, DefaultConfig(), nil)

	ticket := svc.Request(context.Background(), testReport(t))
	waitFor(t, p.started, "call")
	svc.Cancel(ticket)
	waitFor(t, p.cancelled, "call to be cancelled")

	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := svc.Consume(ticket); ok {
		t.Error("cancelled ticket must not see a result")
	}

	// A fresh request after cancellation still completes.
	close(p.release)
	next := svc.Request(context.Background(), testReport(t))
	if _, err := waitConsume(t, svc, next); err != nil {
		t.Errorf("consume after cancel: %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := testReport(t)
	b := testReport(t)
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical reports should share a fingerprint")
	}

	b.Result.TotalScore++
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different scores should change the fingerprint")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(ctx, "k", &Insight{Summary: "s"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	in, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || in.Summary != "s" {
		t.Errorf("get = %+v, %v, %v", in, ok, err)
	}
}

func TestRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url", time.Hour); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

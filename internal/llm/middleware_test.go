package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/autismart/autismart/internal/store"
)

func ok(content string) MockResponse {
	return MockResponse{Content: json.RawMessage(content)}
}

func fail(k Kind) MockResponse {
	return MockResponse{Err: &Error{Kind: k, Provider: ProviderMock}}
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		attempts  int
		wantErr   Kind
		wantOK    bool
		wantCalls int
	}{
		{"first try", []MockResponse{ok(`{}`)}, 3, 0, true, 1},
		{"recovers from outage", []MockResponse{fail(KindUnavailable), fail(KindRateLimited), ok(`{}`)}, 3, 0, true, 3},
		{"gives up after max attempts", []MockResponse{fail(KindUnavailable), fail(KindUnavailable), ok(`{}`)}, 2, KindUnavailable, false, 2},
		{"invalid output retried once", []MockResponse{fail(KindInvalidOutput), fail(KindInvalidOutput), ok(`{}`)}, 5, KindInvalidOutput, false, 2},
		{"rejected not retried", []MockResponse{fail(KindRejected), ok(`{}`)}, 3, KindRejected, false, 1},
		{"truncated not retried", []MockResponse{fail(KindTruncated), ok(`{}`)}, 3, KindTruncated, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry(tt.attempts)).Generate(context.Background(), Request{})
			if tt.wantOK && err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !tt.wantOK && !IsKind(err, tt.wantErr) {
				t.Fatalf("err = %v, want kind %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindRateLimited, RetryAfter: 40 * time.Millisecond}},
		ok(`{}`),
	)
	start := time.Now()
	if _, err := WithRetry(mock, fastRetry(2)).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the RetryAfter pause", elapsed)
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(fail(KindUnavailable), ok(`{}`))
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestWithTimeout(t *testing.T) {
	slow := NewMockProvider(fail(KindUnavailable))
	p := WithTimeout(WithRetry(slow, RetryConfig{MaxAttempts: 2, InitialWait: time.Hour}), 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not cut the retry pause short")
	}
	if WithTimeout(slow, 0) != Provider(slow) {
		t.Error("zero timeout should return the provider unchanged")
	}
}

func TestWithRateLimit(t *testing.T) {
	mock := NewMockProvider()
	if WithRateLimit(mock, RateLimitConfig{}) != Provider(mock) {
		t.Fatal("zero rate should return the provider unchanged")
	}

	mock.Push(ok(`{}`), ok(`{}`))
	// One token every 100ms.
	p := WithRateLimit(mock, RateLimitConfig{PerMinute: 600, Burst: 1})
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := p.Generate(context.Background(), Request{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, want the second call to wait", elapsed)
	}
	if p.ModelID() != ProviderMock {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
}

func TestWithRateLimit_NoTokenBeforeDeadline(t *testing.T) {
	mock := NewMockProvider(ok(`{}`), ok(`{}`))
	p := WithRateLimit(mock, RateLimitConfig{PerMinute: 1, Burst: 1})
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	if !IsKind(err, KindRateLimited) {
		t.Fatalf("err = %v, want rate limited", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestWithLogging_RecordsEvent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"summary":"ok"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, "mock", repo, nil)

	if _, err := p.Generate(WithPurpose(context.Background(), "insight"), guidanceRequest()); err != nil {
		t.Fatal(err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "mock" || e.Purpose != "insight" || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 4 {
		t.Errorf("tokens = %d/%d, want 12/4", e.InputTokens, e.OutputTokens)
	}
	for _, want := range []string{"[system]", "[user]\nSummarize the observation result.", "[schema: test-guidance]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
	if e.ResponseBody != `{"summary":"ok"}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
}

func TestWithLogging_FailureStillRecorded(t *testing.T) {
	mock := NewMockProvider(fail(KindUnavailable))
	repo := &recordingRepo{err: errors.New("disk full")}

	_, err := WithLogging(mock, "mock", repo, nil).Generate(context.Background(), Request{})
	if !IsKind(err, KindUnavailable) {
		t.Fatalf("err = %v, want the provider error", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("events = %+v", repo.events)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Errorf("purpose = %q, want unknown", repo.events[0].Purpose)
	}
}

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(ok(`{"a":1}`), fail(KindRateLimited))

	resp, err := mock.Generate(context.Background(), Request{Prompt: "first"})
	if err != nil || string(resp.Content) != `{"a":1}` {
		t.Fatalf("first = %v, %v", resp, err)
	}
	if _, err := mock.Generate(context.Background(), Request{}); !IsKind(err, KindRateLimited) {
		t.Errorf("second err = %v", err)
	}
	if _, err := mock.Generate(context.Background(), Request{}); !IsKind(err, KindUnavailable) {
		t.Errorf("exhausted err = %v", err)
	}
	if reqs := mock.Requests(); len(reqs) != 3 || reqs[0].Prompt != "first" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil || p.ModelID() != ProviderMock {
		t.Fatalf("mock provider = %v, %v", p, err)
	}

	cfg.Provider = "llama"
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Error("expected an error for an unknown provider")
	}

	cfg.Provider = ProviderOpenAI
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Error("expected an error without an API key")
	}
}

package results

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/insights"
	"github.com/autismart/autismart/internal/llm"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screens/screenstest"
)

func testReport(t *testing.T, f *screenstest.Fixture, option int) *assess.Report {
	t.Helper()
	sess := assess.NewSession("results-test", f.Env.Catalog)
	for _, q := range f.Env.Catalog.Questions() {
		if _, err := sess.RecordAnswer(q.ID, option); err != nil {
			t.Fatalf("RecordAnswer(%s): %v", q.ID, err)
		}
	}
	r, err := sess.Submit()
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	return r
}

// waitForInsight polls until the background insight arrives.
func waitForInsight(t *testing.T, s *ResultsScreen) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.waiting {
		if time.Now().After(deadline) {
			t.Fatal("insight never arrived")
		}
		s.Update(insightPollMsg{gen: s.pollGen})
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResultsScreen_OfflineInsightWithoutService(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	r := testReport(t, f, 0)
	s := New(f.Env, r)

	if cmd := s.Init(); cmd != nil {
		t.Error("offline guidance should not poll")
	}
	if s.insight == nil || s.insight.Source != insights.SourceOffline {
		t.Fatalf("insight = %+v, want offline", s.insight)
	}

	view := s.View(100, 40)
	if !strings.Contains(view, r.Level.DisplayName()) {
		t.Errorf("view missing support level %q", r.Level.DisplayName())
	}
}

func TestResultsScreen_ServiceInsight(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: []byte(`{"summary":"Steady progress.","strengths":["Play"],"focus_areas":["Routines"],"activities":["Picture schedule"]}`),
	})
	f.Env.Insights = insights.NewService(provider, insights.NewMemoryCache(), insights.DefaultConfig(), nil)

	s := New(f.Env, testReport(t, f, 1))
	if cmd := s.Init(); cmd == nil {
		t.Fatal("expected poll command")
	}
	waitForInsight(t, s)

	if s.insight == nil || s.insight.Summary != "Steady progress." {
		t.Errorf("insight = %+v", s.insight)
	}
	if s.insightNote != "" {
		t.Errorf("insightNote = %q, want empty", s.insightNote)
	}
}

func TestResultsScreen_ServiceFailureFallsBack(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	f.Env.Insights = insights.NewService(llm.NewMockProvider(), nil, insights.DefaultConfig(), nil)

	s := New(f.Env, testReport(t, f, 2))
	s.Init()
	waitForInsight(t, s)

	if s.insight == nil || s.insight.Source != insights.SourceOffline {
		t.Errorf("insight = %+v, want offline fallback", s.insight)
	}
	if s.insightNote == "" {
		t.Error("expected fallback note")
	}
}

func TestResultsScreen_StalePollIgnored(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	s := New(f.Env, testReport(t, f, 0))
	s.waiting = true
	s.pollGen = 3

	_, cmd := s.Update(insightPollMsg{gen: 2})
	if cmd != nil {
		t.Error("stale poll should not reschedule")
	}
	if !s.waiting {
		t.Error("stale poll should not end waiting")
	}
}

func TestResultsScreen_CloseStopsPolling(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	s := New(f.Env, testReport(t, f, 0))
	s.waiting = true
	gen := s.pollGen

	s.Close()
	_, cmd := s.Update(insightPollMsg{gen: gen})
	if cmd != nil {
		t.Error("poll after Close should be dropped")
	}
}

// firstCallHangs blocks its first call until the caller gives up and
// answers every later call.
type firstCallHangs struct {
	mu        sync.Mutex
	calls     int
	started   chan struct{}
	cancelled chan struct{}
}

func (p *firstCallHangs) ModelID() string { return "hangs" }

func (p *firstCallHangs) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()
	if n > 1 {
		return &llm.Response{Content: []byte(`{"summary":"Second screen.","strengths":[],"focus_areas":[],"activities":[]}`)}, nil
	}
	close(p.started)
	<-ctx.Done()
	close(p.cancelled)
	return nil, ctx.Err()
}

func TestResultsScreen_CloseCancelsPendingInsight(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	p := &firstCallHangs{started: make(chan struct{}), cancelled: make(chan struct{})}
	f.Env.Insights = insights.NewService(p, nil, insights.DefaultConfig(), nil)

	first := New(f.Env, testReport(t, f, 0))
	first.Init()
	<-p.started
	first.Close()
	select {
	case <-p.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the pending request")
	}

	second := New(f.Env, testReport(t, f, 2))
	second.Init()
	waitForInsight(t, second)

	if second.insight == nil || second.insight.Summary != "Second screen." {
		t.Errorf("insight = %+v, want the second screen's own result", second.insight)
	}
	if second.insightNote != "" {
		t.Errorf("insightNote = %q, want empty", second.insightNote)
	}
}

func TestResultsScreen_EnterPops(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	s := New(f.Env, testReport(t, f, 0))

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("got %T, want PopScreenMsg", cmd())
	}
}

package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/autismart/autismart/internal/activity"
	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screens/assessment"
	"github.com/autismart/autismart/internal/screens/childpicker"
	"github.com/autismart/autismart/internal/screens/screenstest"
	"github.com/autismart/autismart/internal/store"
)

func enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func pushed(t *testing.T, cmd tea.Cmd) router.PushScreenMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	return msg
}

func TestHomeScreen_Title(t *testing.T) {
	h := New(screenstest.NewFixture().Env)
	if got := h.Title(); got != "Home" {
		t.Errorf("Title() = %q, want Home", got)
	}
}

func TestHomeScreen_StartNeedsChild(t *testing.T) {
	h := New(screenstest.NewFixture().Env)

	_, cmd := h.Update(enter())
	if _, ok := pushed(t, cmd).Screen.(*childpicker.PickerScreen); !ok {
		t.Error("start without a child should open the child picker")
	}
}

func TestHomeScreen_StartOpensAssessment(t *testing.T) {
	h := New(screenstest.NewFixture().WithChild("Ava").Env)

	_, cmd := h.Update(enter())
	if _, ok := pushed(t, cmd).Screen.(*assessment.AssessmentScreen); !ok {
		t.Error("start with a child should open the assessment")
	}
}

func TestHomeScreen_Stats(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	ctx := context.Background()
	child := f.Env.ChildID()
	_ = f.Activities.Record(ctx, activity.Record{ChildID: child, Type: activity.TypeAssessment,
		Details: map[string]any{"support_level": "beginner"}})
	_ = f.Activities.Record(ctx, activity.Record{ChildID: child, Type: activity.TypeAssessment,
		Details: map[string]any{"support_level": "advanced"}})
	_ = f.Activities.Record(ctx, activity.Record{ChildID: child, Type: activity.TypeGame, RecordedAt: screenstest.Now})
	_ = f.Activities.Record(ctx, activity.Record{ChildID: "someone-else", Type: activity.TypeGame})

	h := New(f.Env)
	h.Update(h.loadStats()())

	want := stats{assessments: 2, games: 1, lastLevel: assess.SupportAdvanced}
	if h.stats != want {
		t.Errorf("stats = %+v, want %+v", h.stats, want)
	}
	if h.mascot != MascotCheer {
		t.Errorf("mascot = %d, want cheer", h.mascot)
	}
}

func TestHomeScreen_ResumeLabel(t *testing.T) {
	f := screenstest.NewFixture().WithChild("Ava")
	_ = f.Snapshots.Save(context.Background(), &store.Snapshot{Data: store.SnapshotData{
		Version: 1,
		Assessment: &assess.SnapshotData{
			Version: assess.SnapshotVersion,
			ChildID: f.Env.ChildID(),
			Answers: map[string]int{"easy-01": 0, "easy-02": 1},
		},
	}})

	h := New(f.Env)
	h.Update(h.Resume()())

	if h.stats.resumable != 2 {
		t.Errorf("resumable = %d, want 2", h.stats.resumable)
	}
	if got := h.menu.Items[itemAssessment].Label; got != "Resume Assessment" {
		t.Errorf("label = %q, want Resume Assessment", got)
	}
	if h.mascot != MascotWaiting {
		t.Errorf("mascot = %d, want waiting", h.mascot)
	}
}

func TestHomeScreen_UpdateNote(t *testing.T) {
	f := screenstest.NewFixture()
	f.Env.LatestVersion = func(context.Context) (string, error) { return "v1.4.0", nil }

	h := New(f.Env)
	h.Update(h.checkUpdate()())

	if view := h.View(100, 40); !strings.Contains(view, "v1.4.0") {
		t.Error("view missing update note")
	}
}

func TestHomeScreen_NoUpdateCheckWithoutChecker(t *testing.T) {
	h := New(screenstest.NewFixture().Env)
	if cmd := h.checkUpdate(); cmd != nil {
		t.Error("expected no update check")
	}
}

func TestHomeScreen_ExitQuits(t *testing.T) {
	h := New(screenstest.NewFixture().Env)
	h.menu.Selected = itemExit

	_, cmd := h.Update(enter())
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("got %T, want QuitMsg", cmd())
	}
}

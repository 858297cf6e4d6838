package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/autismart/autismart/internal/screen"
)

type fakeScreen struct {
	name    string
	inits   int
	updates int
	closed  int
}

func (f *fakeScreen) Init() tea.Cmd                           { f.inits++; return nil }
func (f *fakeScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { f.updates++; return f, nil }
func (f *fakeScreen) View(int, int) string                    { return f.name }
func (f *fakeScreen) Title() string                           { return f.name }
func (f *fakeScreen) Close()                                  { f.closed++ }

type refreshingScreen struct {
	fakeScreen
	resumed int
}

func (r *refreshingScreen) Resume() tea.Cmd {
	r.resumed++
	return func() tea.Msg { return "refreshed" }
}

func stack(names ...string) (*Router, []*fakeScreen) {
	screens := make([]*fakeScreen, len(names))
	for i, n := range names {
		screens[i] = &fakeScreen{name: n}
	}
	r := New(screens[0])
	for _, s := range screens[1:] {
		r.Push(s)
	}
	return r, screens
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name      string
		msg       tea.Msg
		wantTop   string
		wantDepth int
		closed    []int // per screen in stack order
	}{
		{"pop", PopScreenMsg{}, "assessment", 2, []int{0, 0, 1}},
		{"pop to root", PopToRootMsg{}, "home", 1, []int{0, 1, 1}},
		{"replace", ReplaceScreenMsg{Screen: &fakeScreen{name: "results"}}, "results", 3, []int{0, 0, 1}},
		{"push", PushScreenMsg{Screen: &fakeScreen{name: "insights"}}, "insights", 4, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, screens := stack("home", "assessment", "game")
			r.Update(tt.msg)

			if got := r.Active().Title(); got != tt.wantTop {
				t.Errorf("Active() = %q, want %q", got, tt.wantTop)
			}
			if r.Depth() != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", r.Depth(), tt.wantDepth)
			}
			for i, s := range screens {
				if s.closed != tt.closed[i] {
					t.Errorf("%s closed %d times, want %d", s.name, s.closed, tt.closed[i])
				}
			}
		})
	}
}

func TestPushAndReplaceInit(t *testing.T) {
	r, _ := stack("home")
	pushed := &fakeScreen{name: "picker"}
	r.Push(pushed)
	replacement := &fakeScreen{name: "results"}
	r.Replace(replacement)

	if pushed.inits != 1 || replacement.inits != 1 {
		t.Errorf("inits = %d, %d, want 1, 1", pushed.inits, replacement.inits)
	}
}

func TestRootStays(t *testing.T) {
	r, screens := stack("home")
	if cmd := r.Pop(); cmd != nil {
		t.Error("Pop at root returned a command")
	}
	if cmd := r.PopToRoot(); cmd != nil {
		t.Error("PopToRoot at root returned a command")
	}
	if r.Depth() != 1 || screens[0].closed != 0 {
		t.Errorf("Depth() = %d, root closed %d times", r.Depth(), screens[0].closed)
	}
}

func TestUpdateReachesTopOnly(t *testing.T) {
	r, screens := stack("home", "game")
	r.Update("tick")
	if screens[1].updates != 1 || screens[0].updates != 0 {
		t.Errorf("updates game=%d home=%d, want 1, 0", screens[1].updates, screens[0].updates)
	}
	if got := r.View(80, 24); got != "game" {
		t.Errorf("View() = %q, want game", got)
	}
}

func TestCloseAll(t *testing.T) {
	r, screens := stack("home", "game")
	r.CloseAll()
	for _, s := range screens {
		if s.closed != 1 {
			t.Errorf("%s closed %d times, want 1", s.name, s.closed)
		}
	}
}

func TestUncoveredScreenResumes(t *testing.T) {
	t.Run("pop", func(t *testing.T) {
		home := &refreshingScreen{fakeScreen: fakeScreen{name: "home"}}
		r := New(home)
		r.Push(&fakeScreen{name: "history"})

		cmd := r.Pop()
		if home.resumed != 1 {
			t.Errorf("resumed = %d, want 1", home.resumed)
		}
		if cmd == nil || cmd() != "refreshed" {
			t.Error("Pop should return the resume command")
		}
	})

	t.Run("pop to root skips middle", func(t *testing.T) {
		home := &refreshingScreen{fakeScreen: fakeScreen{name: "home"}}
		middle := &refreshingScreen{fakeScreen: fakeScreen{name: "picker"}}
		r := New(home)
		r.Push(middle)
		r.Push(&fakeScreen{name: "game"})

		r.PopToRoot()
		if home.resumed != 1 || middle.resumed != 0 {
			t.Errorf("resumed home=%d middle=%d, want 1, 0", home.resumed, middle.resumed)
		}
	})
}

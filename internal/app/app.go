// Package app is the root Bubble Tea model: it owns the router, draws the
// frame around the active screen and handles global keys.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/screens/home"
	"github.com/autismart/autismart/internal/screens/welcome"
	"github.com/autismart/autismart/internal/ui/layout"
)

var (
	rootHints = []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	stackedHints = []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
)

type Model struct {
	env           *screens.Env
	router        *router.Router
	start         screen.Screen
	width, height int
}

type Option func(*Model)

// WithStart opens s above home, skipping the welcome splash.
func WithStart(s screen.Screen) Option {
	return func(m *Model) {
		m.router = router.New(home.New(m.env))
		m.start = s
	}
}

func newModel(env *screens.Env, opts ...Option) Model {
	m := Model{env: env}
	m.router = router.New(welcome.New(func() screen.Screen { return home.New(env) }))
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.start != nil {
		cmd = tea.Batch(cmd, m.router.Push(m.start))
	}
	return cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.screenHandlesEscape() {
				return m, m.back()
			}
		}
	}
	return m, m.router.Update(msg)
}

func (m Model) screenHandlesEscape() bool {
	h, ok := m.router.Active().(screen.EscapeHandler)
	return ok && h.HandlesEscape()
}

func (m Model) back() tea.Cmd {
	if m.router.Depth() < 2 {
		return nil
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

func (m Model) frame() string {
	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.env.ChildName(), m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	rows := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return layout.RenderFrame(header, m.router.View(m.width, rows), footer, m.width, m.height)
}

func (m Model) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if h := p.KeyHints(); len(h) > 0 {
			return h
		}
	}
	if m.router.Depth() > 1 {
		return stackedHints
	}
	return rootHints
}

// Run blocks until the user quits. Open screens are closed afterwards so
// an unfinished game still records its progress.
func Run(env *screens.Env, opts ...Option) error {
	m := newModel(env, opts...)
	_, err := tea.NewProgram(m).Run()
	m.router.CloseAll()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Package welcome is the launch splash. It fades in the puzzle mark, then
// the banner and tagline, and hands over to home on any key.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/ui/theme"
)

const Tagline = "Small steps, every day."

const (
	frame     = 100 * time.Millisecond
	markLit   = 500 * time.Millisecond
	textShown = 1500 * time.Millisecond
	settled   = 2500 * time.Millisecond
)

const puzzleMark = `  ╭─────╮ ╭─────╮
  │  ●  ╰─╯  ●  │
  │             │
  │   ╰─────╯   │
  ╰─────────────╯`

const (
	bannerWide = `
 ▄▀█ █ █ ▀█▀ █ █▀ █▀▄▀█ ▄▀█ █▀█ ▀█▀
 █▀█ █▄█  █  █ ▄█ █ ▀ █ █▀█ █▀▄  █ `
	bannerNarrow = "A U T I S M A R T"

	bannerMinWidth = 40
)

// Banner is the app wordmark, spelled out on narrow terminals.
func Banner(width int) string {
	art := bannerWide
	if width < bannerMinWidth {
		art = bannerNarrow
	}
	return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(art)
}

type frameMsg time.Time

type WelcomeScreen struct {
	next    func() screen.Screen
	elapsed time.Duration
	left    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New builds the splash. next is called once, when the user leaves.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.left || w.elapsed >= settled {
			return w, nil
		}
		w.elapsed = min(w.elapsed+frame, settled)
		if w.elapsed == settled {
			return w, nil
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

func (w *WelcomeScreen) leave() tea.Cmd {
	if w.left {
		return nil
	}
	w.left = true
	home := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: home} }
}

func (w *WelcomeScreen) View(width, height int) string {
	markColor := theme.TextDim
	if w.elapsed >= markLit {
		markColor = theme.Secondary
	}
	lines := []string{lipgloss.NewStyle().Foreground(markColor).Render(puzzleMark)}

	if w.elapsed >= textShown {
		lines = append(lines,
			"",
			Banner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(Tagline),
			"",
			theme.Hint.Render("press any key to continue"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

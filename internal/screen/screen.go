// Package screen defines what the router and app frame need from a
// screen, plus optional hooks a screen may implement.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/autismart/autismart/internal/ui/layout"
)

type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View draws the content area only; the app adds header and footer.
	View(width, height int) string

	// Title is shown centered in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is called when the screen leaves the stack or the app exits.
// Games use it to stop timers and record an unfinished round.
type Closer interface {
	Close()
}

// EscapeHandler keeps esc from popping the screen while HandlesEscape
// reports true, e.g. during a quit confirmation.
type EscapeHandler interface {
	HandlesEscape() bool
}

// Resumer refreshes a screen uncovered by a pop.
type Resumer interface {
	Resume() tea.Cmd
}

package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

// MultiChoice asks one question with numbered options. Options are not
// right or wrong; the component only reports which one was picked.
type MultiChoice struct {
	Prompt  string
	Options []string
	Cursor  int

	// Recorded is a stored answer shown with a check mark, or -1.
	Recorded int

	chosen int
}

func NewMultiChoice(prompt string, options []string) MultiChoice {
	return MultiChoice{Prompt: prompt, Options: options, Recorded: -1, chosen: -1}
}

// WithRecorded marks a stored answer and puts the cursor on it.
func (m MultiChoice) WithRecorded(idx int) MultiChoice {
	if idx < 0 || idx >= len(m.Options) {
		return m
	}
	m.Recorded, m.Cursor = idx, idx
	return m
}

// Done reports whether an option has been picked.
func (m MultiChoice) Done() bool { return m.chosen >= 0 }

// Choice is the picked option index, or -1.
func (m MultiChoice) Choice() int { return m.chosen }

// Update moves the cursor and picks on enter. Digits 1-9 pick directly.
// Once picked, further keys are ignored.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Done() {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.Cursor = max(m.Cursor-1, 0)
	case "down", "j":
		m.Cursor = min(m.Cursor+1, len(m.Options)-1)
	case "enter":
		m.chosen = m.Cursor
	default:
		if n, ok := digit(key); ok && n <= len(m.Options) {
			m.Cursor, m.chosen = n-1, n-1
		}
	}
	return m, nil
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Prompt))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		marker := "  "
		if i == m.Cursor && !m.Done() {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", marker, i+1, opt)
		if i == m.Recorded {
			line += "  ✓"
		}
		b.WriteString(m.style(i).Render(line))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m MultiChoice) style(i int) lipgloss.Style {
	switch {
	case !m.Done() && i == m.Cursor, i == m.chosen:
		return theme.Selected
	case m.Done():
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	}
	return theme.Unselected
}

// digit parses a single key "1".."9".
func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}

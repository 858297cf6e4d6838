package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

type MenuItem struct {
	Label    string
	Hint     string // dim text after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Disabled items are drawn but the
// cursor never lands on them.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// next finds the first enabled item after from in direction dir, or -1.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	move := func(from, dir int) {
		if i := m.next(from, dir); i >= 0 {
			m.Selected = i
		}
	}
	switch kmsg.String() {
	case "up", "k":
		move(m.Selected, -1)
	case "down", "j":
		move(m.Selected, 1)
	case "home", "g":
		move(-1, 1)
	case "end", "G":
		move(len(m.Items), -1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	off := lipgloss.NewStyle().Foreground(theme.Border)

	var b strings.Builder
	for i, it := range m.Items {
		var line string
		switch {
		case it.Disabled:
			line = off.Render("    " + it.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + it.Label)
		default:
			line = theme.Unselected.Render("    " + it.Label)
		}
		if it.Hint != "" {
			line += "  " + theme.Hint.Render(it.Hint)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

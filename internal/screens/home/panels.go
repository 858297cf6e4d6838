package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/ui/theme"
)

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// stats summarizes the active child's recorded activity.
type stats struct {
	assessments int
	games       int
	lastLevel   assess.SupportLevel // "" before the first assessment
	resumable   int                 // answers in an unfinished assessment
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(st stats, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	parts := []string{
		val.Render(fmt.Sprintf("%d", st.assessments)) + dim.Render(" assessments"),
		val.Render(fmt.Sprintf("%d", st.games)) + dim.Render(" games"),
	}
	if st.lastLevel != "" {
		parts = append(parts, theme.Badge("last: "+st.lastLevel.DisplayName(), theme.SupportColor(st.lastLevel)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(strings.Join(parts, dim.Render("  ·  ")))
}

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int, compact bool) string {
	var lines []string
	for i, label := range items {
		if compact {
			if i == selected {
				lines = append(lines, theme.Selected.Render(" ▸ "+label+" "))
			} else {
				lines = append(lines, theme.Unselected.Render("   "+label))
			}
			continue
		}
		style := lipgloss.NewStyle().
			Width(buttonWidth).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
		if i == selected {
			lines = append(lines, style.
				Bold(true).
				Foreground(theme.Text).
				BorderForeground(theme.Primary).
				Render("▸ "+label))
		} else {
			lines = append(lines, style.
				Foreground(theme.TextDim).
				BorderForeground(theme.Border).
				Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderNote renders a dim one-line note such as an update notification.
func renderNote(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

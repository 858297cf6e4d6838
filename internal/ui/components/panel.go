package components

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

// Panel wraps content in a rounded-border card of content width cw.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// AccentPanel is a Panel with a colored border, used for outcomes.
func AccentPanel(content string, cw int, c color.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// Button renders a one-line button.
func Button(label string, selected bool) string {
	if selected {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render(label)
}

// Swatch renders a block of solid color.
func Swatch(hex string, width int) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Render(strings.Repeat(" ", width))
}

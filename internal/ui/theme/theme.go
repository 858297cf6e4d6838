// Package theme holds the shared palette and text styles. Colors are soft
// and low-contrast so screens stay calm for children.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/assessment"
)

var (
	Primary   = lipgloss.Color("#818CF8") // periwinkle
	Secondary = lipgloss.Color("#5EEAD4") // seafoam
	Accent    = lipgloss.Color("#FCD34D") // butter
	Success   = lipgloss.Color("#86EFAC") // mint
	Error     = lipgloss.Color("#FDA4AF") // blush
	Warning   = lipgloss.Color("#FDBA74") // apricot
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#475569")
)

// SupportColor tints a support level: mint, apricot, blush.
func SupportColor(l assessment.SupportLevel) color.Color {
	switch l {
	case assessment.SupportBeginner:
		return Success
	case assessment.SupportIntermediate:
		return Warning
	case assessment.SupportAdvanced:
		return Error
	}
	return TextDim
}

// TrendColor tints a category trend.
func TrendColor(improving bool) color.Color {
	if improving {
		return Success
	}
	return Warning
}

// Badge renders bold text in c.
func Badge(text string, c color.Color) string {
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(text)
}

var (
	Title      = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle   = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body       = lipgloss.NewStyle().Foreground(Text)
	Hint       = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Disclaimer = lipgloss.NewStyle().Foreground(Warning).Italic(true)
)

// Choice and feedback states.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Buttons on confirmation panels.
var (
	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(BgCard).Bold(true).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 2)
)

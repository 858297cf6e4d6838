package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

const percentSuffixWidth = len("  100%")

// ProgressBar draws a labelled horizontal bar. Percent is in [0,1];
// values outside are clamped.
type ProgressBar struct {
	Label       string
	LabelWidth  int // pad labels to this so stacked bars align
	Percent     float64
	ShowPercent bool
	Width       int
	Fill        color.Color // nil means theme.Secondary
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		pad := strings.Repeat(" ", max(0, p.LabelWidth-lipgloss.Width(p.Label)))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label + pad))
		b.WriteString("  ")
	}

	track := p.Width - lipgloss.Width(b.String())
	if p.ShowPercent {
		track -= percentSuffixWidth
	}
	track = max(track, 4)
	pct := min(max(p.Percent, 0), 1)
	filled := int(float64(track) * pct)

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	b.WriteString(lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", track-filled)))

	if p.ShowPercent {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(pct*100+0.5))))
	}
	return b.String()
}

// Package layout frames every screen between a header bar and a footer of
// key hints, and answers sizing questions for screens.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	// Below this height screens drop mascots and banners.
	CompactHeightThreshold = 30

	maxContentWidth = 72
	minContentWidth = 20
)

// KeyHint is one "key action" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key)
	return key + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

func IsTooSmall(width, height int) bool { return width < MinWidth || height < MinHeight }

// ContentHeight is what remains of the terminal after header and footer.
func ContentHeight(totalHeight int) int {
	return max(0, totalHeight-HeaderHeight-FooterHeight)
}

// ContentWidth clamps the card width so lines stay readable on wide terminals.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, minContentWidth), maxContentWidth)
}

func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The window is a little small.\n\nPlease make it at least %d x %d.\n\nNow: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.NewStyle().
		Foreground(theme.Text).
		Align(lipgloss.Center).
		Width(width).
		Height(height).
		Render(msg)
}

// RenderHeader shows the app name, the screen title centered, and the
// active child on the right.
func RenderHeader(title, child string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  AutiSmart")
	middle := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	who := lipgloss.NewStyle().Foreground(theme.TextDim).Render("no child selected")
	if child != "" {
		who = lipgloss.NewStyle().Foreground(theme.Accent).Render("● " + child)
	}
	return bar(spread(brand, middle, who, max(0, width-4)), width)
}

func RenderFooter(hints []KeyHint, width int) string {
	rendered := make([]string, len(hints))
	for i, h := range hints {
		rendered[i] = h.render()
	}
	return bar("  "+strings.Join(rendered, "   "), width)
}

// RenderFrame stacks header, content and footer, giving the content all
// rows the bars leave over.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// spread keeps middle centered in width, with left and right at the edges.
// At least one space separates neighbours.
func spread(left, middle, right string, width int) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(middle), lipgloss.Width(right)
	gapL := max(1, (width-mw)/2-lw)
	gapR := max(1, width-lw-gapL-mw-rw)
	return left + strings.Repeat(" ", gapL) + middle + strings.Repeat(" ", gapR) + right
}

package assessment

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

// renderLevelList shows every level with its progress and the submit row.
func (s *AssessmentScreen) renderLevelList(width, height int) string {
	cw := layout.ContentWidth(width)
	scorer := s.sess.Scorer()

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Behavioral Assessment"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw).Render(
		"Answer based on what you usually observe. Levels can be done in any order."))
	b.WriteString("\n\n")

	total := s.env.Catalog.Total()
	overall := components.NewProgressBar(
		fmt.Sprintf("Overall %d/%d", scorer.Answered(), total),
		ratio(scorer.Answered(), total), true, cw)
	b.WriteString(overall.View())
	b.WriteString("\n\n")

	labelWidth := 0
	for _, l := range s.levels {
		labelWidth = max(labelWidth, lipgloss.Width(l.Title)+2)
	}

	for i, l := range s.levels {
		answered, n := s.sess.LevelProgress(l.Key)
		label := "  " + l.Title
		if i == s.cursor {
			label = "▸ " + l.Title
		}
		bar := components.ProgressBar{
			Label:       label,
			LabelWidth:  labelWidth,
			Percent:     ratio(answered, n),
			ShowPercent: true,
			Width:       cw,
		}
		if answered == n {
			bar.Fill = theme.Success
		}
		b.WriteString(bar.View())
		b.WriteString("\n")
		if i == s.cursor && l.Description != "" {
			b.WriteString(theme.Hint.Render("    " + l.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(components.Button("Submit", s.cursor == len(s.levels)))
	b.WriteString("\n")

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Disclaimer.Render(assess.Disclaimer))

	return layout.Center(b.String(), width, height)
}

// renderQuestionView shows the current question of the open level.
func (s *AssessmentScreen) renderQuestionView(width, height int) string {
	cw := layout.ContentWidth(width)
	l := s.currentLevel()
	q := l.Questions[s.question]
	answered, n := s.sess.LevelProgress(l.Key)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(l.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw).Render(
		fmt.Sprintf("Question %d of %d", s.question+1, len(l.Questions))))
	b.WriteString("\n\n")

	b.WriteString(components.NewProgressBar("", ratio(answered, n), false, cw).View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(
		q.Category.Icon() + "  " + q.Category.DisplayName()))
	b.WriteString("\n\n")

	card := components.Panel(s.mc.View(), cw)
	b.WriteString(card)

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(s.notice))
	}

	return layout.Center(b.String(), width, height)
}

func renderResetConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Clear every answer?"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("The assessment starts over from the first level."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("[Y] Yes, clear answers"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] No, keep them"))
	return layout.Center(b.String(), width, height)
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return layout.Center(theme.Hint.Render("Preparing the questionnaire..."), width, height)
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return layout.Center(theme.Incorrect.Render(
		fmt.Sprintf("Error: %s\n\nPress any key to go back.", errMsg)), width, height)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

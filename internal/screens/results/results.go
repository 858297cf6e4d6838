// Package results shows a submitted assessment: support level, category
// trends and caregiver guidance.
package results

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/insights"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

const pollInterval = 300 * time.Millisecond

// insightPollMsg checks whether background guidance is ready.
type insightPollMsg struct {
	gen int
}

// ResultsScreen displays a submitted assessment report.
type ResultsScreen struct {
	env    *screens.Env
	report *assess.Report

	insight     *insights.Insight
	insightNote string
	waiting     bool
	pollGen     int
	ticket      insights.Ticket
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.Closer = (*ResultsScreen)(nil)

// New creates a ResultsScreen for report.
func New(env *screens.Env, report *assess.Report) *ResultsScreen {
	return &ResultsScreen{env: env, report: report}
}

func (s *ResultsScreen) Init() tea.Cmd {
	if s.report == nil {
		return nil
	}
	if s.env.Insights == nil {
		s.insight = insights.Offline(s.report, s.env.Clock())
		return nil
	}
	s.waiting = true
	s.ticket = s.env.Insights.Request(context.Background(), s.report)
	return s.poll()
}

func (s *ResultsScreen) poll() tea.Cmd {
	gen := s.pollGen
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return insightPollMsg{gen: gen}
	})
}

// Close stops polling for guidance and abandons any pending request.
func (s *ResultsScreen) Close() {
	s.pollGen++
	if s.waiting && s.env.Insights != nil {
		s.env.Insights.Cancel(s.ticket)
	}
	s.waiting = false
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case insightPollMsg:
		if msg.gen != s.pollGen || !s.waiting {
			return s, nil
		}
		in, ready, err := s.env.Insights.Consume(s.ticket)
		if !ready {
			return s, s.poll()
		}
		s.waiting = false
		s.insight = in
		if err != nil {
			s.env.Log().Warn("insight generation failed", zap.Error(err))
			s.insightNote = "Guidance service unavailable; showing built-in suggestions."
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	r := s.report
	if r == nil {
		return ""
	}
	cw := layout.ContentWidth(width)
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)

	var b strings.Builder

	levelColor := theme.SupportColor(r.Level)
	badge := theme.Badge(fmt.Sprintf("%s support  ·  %d%%", r.Level.DisplayName(), r.RoundedPercentage()), levelColor)
	sub := theme.Hint.Render(fmt.Sprintf("%s  ·  score %d of %d  ·  %d questions",
		r.Level.Description(), r.Result.TotalScore, r.MaxScore(), r.Result.TotalQuestions))
	b.WriteString(components.AccentPanel(badge+"\n"+sub, cw, levelColor))
	b.WriteString("\n\n")

	b.WriteString(renderTrends(r, cw))
	b.WriteString("\n")

	b.WriteString(s.renderInsight(cw, compact))
	b.WriteString("\n\n")
	b.WriteString(theme.Disclaimer.Render(r.Disclaimer))

	return layout.Center(b.String(), width, height)
}

// renderTrends draws one bar per category. Higher means more typical.
func renderTrends(r *assess.Report, cw int) string {
	labelWidth := 0
	for _, c := range catalog.AllCategories() {
		labelWidth = max(labelWidth, lipgloss.Width(c.Icon()+" "+c.DisplayName()))
	}

	var b strings.Builder
	for _, c := range catalog.AllCategories() {
		label := c.Icon() + " " + c.DisplayName()
		t, ok := r.Trend(c)
		if !ok {
			pad := strings.Repeat(" ", max(0, labelWidth-lipgloss.Width(label)))
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(label + pad + "  not assessed"))
			b.WriteString("\n")
			continue
		}
		bar := components.ProgressBar{
			Label:       label,
			LabelWidth:  labelWidth,
			Percent:     float64(t.Percentage) / 100,
			ShowPercent: true,
			Width:       cw - 16,
			Fill:        theme.TrendColor(t.IsImproving),
		}
		status := lipgloss.NewStyle().Foreground(theme.TrendColor(t.IsImproving)).Render("  " + trendLabel(t.IsImproving))
		b.WriteString(bar.View() + status)
		b.WriteString("\n")
	}
	return b.String()
}

func trendLabel(improving bool) string {
	if improving {
		return "improving"
	}
	return "needs support"
}

func (s *ResultsScreen) renderInsight(cw int, compact bool) string {
	if s.waiting {
		return theme.Hint.Render("Preparing guidance...")
	}
	in := s.insight
	if in == nil {
		return ""
	}

	limit := 3
	if compact {
		limit = 1
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(in.Summary))
	b.WriteString("\n")
	writeList(&b, "Strengths", in.Strengths, limit, theme.Success, cw)
	writeList(&b, "Focus areas", in.FocusAreas, limit, theme.Warning, cw)
	writeList(&b, "Try at home", in.Activities, limit, theme.Secondary, cw)
	if s.insightNote != "" {
		b.WriteString(theme.Hint.Render(s.insightNote))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string, limit int, c color.Color, cw int) {
	if len(items) == 0 {
		return
	}
	b.WriteString(lipgloss.NewStyle().Foreground(c).Bold(true).Render(title))
	b.WriteString("\n")
	for _, item := range items[:min(limit, len(items))] {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render("  • " + item))
		b.WriteString("\n")
	}
}

package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/activity"
	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/store"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

// pageSize is how many records the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Records []activity.Record
	Err     error
}

// HistoryScreen lists past assessments and games for the active child.
type HistoryScreen struct {
	env      *screens.Env
	filter   activity.Type
	records  []activity.Record
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screens.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.env.Activities
	f := store.ActivityFilter{
		ChildID:   s.env.ChildID(),
		Type:      s.filter,
		QueryOpts: store.QueryOpts{Limit: pageSize},
	}
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		recs, err := repo.Query(context.Background(), f)
		return historyLoadedMsg{Records: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "F", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
		}
		s.loaded = true
		s.selected = 0
		s.expanded = make(map[int]bool)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "f":
			s.filter = nextFilter(s.filter)
			s.loaded = false
			return s, s.load()
		}
	}
	return s, nil
}

// nextFilter cycles all, assessments, games.
func nextFilter(t activity.Type) activity.Type {
	switch t {
	case "":
		return activity.TypeAssessment
	case activity.TypeAssessment:
		return activity.TypeGame
	default:
		return ""
	}
}

func filterLabel(t activity.Type) string {
	switch t {
	case activity.TypeAssessment:
		return "Assessments"
	case activity.TypeGame:
		return "Games"
	default:
		return "All activity"
	}
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	heading := filterLabel(s.filter)
	if name := s.env.ChildName(); name != "" {
		heading += " for " + name
	}
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(heading))
	b.WriteString("\n\n")

	if len(s.records) == 0 {
		b.WriteString(center.Foreground(theme.TextDim).Italic(true).
			Render("Nothing recorded yet. Try an assessment or a game!"))
		return b.String()
	}

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %s %-22s %5d/%-5d %3.0f%%  %s",
			prefix,
			rec.RecordedAt.Local().Format("Jan 02, 2006 15:04"),
			typeIcon(rec.Type),
			rec.Name,
			rec.Score, rec.MaxScore, rec.Percentage,
			formatDuration(rec))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range detailLines(rec) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(d.color).Render("      "+d.text)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func typeIcon(t activity.Type) string {
	if t == activity.TypeAssessment {
		return "📋"
	}
	return "🎮"
}

func formatDuration(rec activity.Record) string {
	secs := int(rec.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

type detail struct {
	text  string
	color color.Color
}

// detailLines expands a record's details for display.
func detailLines(rec activity.Record) []detail {
	if rec.Type == activity.TypeGame {
		return []detail{{
			text: fmt.Sprintf("Level %v  ·  %v levels completed  ·  %d correct, %d missed",
				rec.Details["level"], rec.Details["levels_completed"],
				rec.CorrectAnswers, rec.IncorrectAnswers),
			color: theme.TextDim,
		}}
	}

	var out []detail
	if lvl, ok := rec.Details["support_level"].(string); ok {
		sl := assess.SupportLevel(lvl)
		out = append(out, detail{
			text:  fmt.Sprintf("%s support: %s", sl.DisplayName(), sl.Description()),
			color: theme.SupportColor(sl),
		})
	}
	cats, _ := rec.Details["categories"].(map[string]any)
	for _, c := range catalog.AllCategories() {
		entry, _ := cats[string(c)].(map[string]any)
		pct, ok := entry["trend_percentage"]
		if !ok {
			continue
		}
		out = append(out, detail{
			text:  fmt.Sprintf("%s %s: %v%%", c.Icon(), c.DisplayName(), pct),
			color: theme.TextDim,
		})
	}
	out = append(out, detail{text: assess.Disclaimer, color: theme.Warning})
	return out
}

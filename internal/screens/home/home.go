package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/activity"
	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/screens/assessment"
	"github.com/autismart/autismart/internal/screens/childpicker"
	"github.com/autismart/autismart/internal/screens/history"
	"github.com/autismart/autismart/internal/screens/play"
	"github.com/autismart/autismart/internal/screens/welcome"
	"github.com/autismart/autismart/internal/store"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
)

const (
	itemAssessment = iota
	itemGames
	itemHistory
	itemSwitchChild
	itemExit
)

type statsLoadedMsg struct {
	Stats  stats
	Mascot MascotVariant
}

type updateCheckedMsg struct {
	Latest string
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	env    *screens.Env
	menu   components.Menu
	stats  stats
	mascot MascotVariant
	update string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screens.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.menu = components.NewMenu([]components.MenuItem{
		itemAssessment:  {Label: "Start Assessment", Action: h.withChild(func() screen.Screen { return assessment.New(env) })},
		itemGames:       {Label: "Play Games", Action: h.withChild(func() screen.Screen { return play.NewPicker(env) })},
		itemHistory:     {Label: "History", Action: h.withChild(func() screen.Screen { return history.New(env) })},
		itemSwitchChild: {Label: "Switch Child", Action: h.push(func() screen.Screen { return childpicker.New(env, nil) })},
		itemExit:        {Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

// push opens the screen built by f.
func (h *HomeScreen) push(f func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		s := f()
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

// withChild opens the screen built by f, asking for a child first if none
// is selected.
func (h *HomeScreen) withChild(f func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		if h.env.Child == nil {
			picker := childpicker.New(h.env, f)
			return func() tea.Msg { return router.PushScreenMsg{Screen: picker} }
		}
		s := f()
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return tea.Batch(h.loadStats(), h.checkUpdate())
}

// Resume refreshes the stats when the home screen is shown again.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	env := h.env
	childID := env.ChildID()
	return func() tea.Msg {
		ctx := context.Background()
		var st stats
		mascot := MascotIdle

		if env.Activities != nil && childID != "" {
			recs, err := env.Activities.Query(ctx, store.ActivityFilter{ChildID: childID})
			if err != nil {
				env.Log().Warn("load home stats", zap.Error(err))
			}
			now := env.Clock().Local()
			y, m, d := now.Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
			for _, r := range recs {
				switch r.Type {
				case activity.TypeAssessment:
					st.assessments++
					if lvl, ok := r.Details["support_level"].(string); ok && st.lastLevel == "" {
						st.lastLevel = assess.SupportLevel(lvl)
					}
				case activity.TypeGame:
					st.games++
				}
				if !r.RecordedAt.Local().Before(today) {
					mascot = MascotCheer
				}
			}
		}

		if env.Snapshots != nil && childID != "" {
			snap, err := env.Snapshots.Latest(ctx)
			if err == nil && snap != nil && snap.Data.Assessment != nil && snap.Data.Assessment.ChildID == childID {
				st.resumable = len(snap.Data.Assessment.Answers)
				if st.resumable > 0 {
					mascot = MascotWaiting
				}
			}
		}
		return statsLoadedMsg{Stats: st, Mascot: mascot}
	}
}

func (h *HomeScreen) checkUpdate() tea.Cmd {
	check := h.env.LatestVersion
	if check == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		latest, err := check(ctx)
		if err != nil {
			h.env.Log().Debug("update check failed", zap.Error(err))
			return nil
		}
		return updateCheckedMsg{Latest: latest}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.stats = msg.Stats
		h.mascot = msg.Mascot
		label := "Start Assessment"
		if h.stats.resumable > 0 {
			label = "Resume Assessment"
		}
		h.menu.Items[itemAssessment].Label = label
		return h, nil

	case updateCheckedMsg:
		h.update = msg.Latest
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)
	cw := layout.ContentWidth(width)

	var sections []string
	sections = append(sections, welcome.Banner(cw))
	if !compact {
		sections = append(sections, RenderMascot(h.mascot))
	}
	if h.env.Child != nil {
		sections = append(sections, renderStatsBar(h.stats, cw))
	} else {
		sections = append(sections, renderNote("Choose a child to begin", cw))
	}

	labels := make([]string, len(h.menu.Items))
	for i, item := range h.menu.Items {
		labels[i] = item.Label
	}
	sections = append(sections, renderMenu(labels, h.menu.Selected, cw, compact))

	if h.update != "" {
		sections = append(sections, renderNote("New version "+h.update+" available. Run autismart update", cw))
	}

	return layout.Center(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

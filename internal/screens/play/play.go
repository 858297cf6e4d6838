// Package play hosts the therapy mini-games: a picker and a screen that
// drives any game engine with a one-second level timer.
package play

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

const (
	tickInterval  = time.Second
	settleDelay   = 900 * time.Millisecond
	timerWarnSecs = 5
)

// tickMsg advances the level timer. Ticks from an older generation are
// dropped and never rescheduled.
type tickMsg struct {
	gen int
}

// settleMsg hides a mismatched memory pair.
type settleMsg struct {
	gen int
}

// PlayScreen runs one game until the player finishes or leaves.
type PlayScreen struct {
	env    *screens.Env
	board  board
	cursor int

	tickGen   int
	settleGen int
	last      *outcome
	finished  bool
	recorded  bool
	errMsg    string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)
var _ screen.Closer = (*PlayScreen)(nil)
var _ screen.EscapeHandler = (*PlayScreen)(nil)

// New creates a play screen for kind.
func New(env *screens.Env, kind games.Kind) *PlayScreen {
	s := &PlayScreen{env: env}
	b, err := newBoard(kind, env.Rand())
	if err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.board = b
	return s
}

func (s *PlayScreen) Init() tea.Cmd {
	if s.board == nil {
		return nil
	}
	s.board.Start()
	return s.startTicker()
}

func (s *PlayScreen) Title() string {
	if s.board == nil {
		return "Games"
	}
	return s.board.Kind().DisplayName()
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	if s.finished || s.board == nil {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	switch s.board.Phase() {
	case games.PhaseLevelComplete:
		hints := []layout.KeyHint{{Key: "R", Description: "Replay"}}
		if s.board.HasNextLevel() {
			hints = append([]layout.KeyHint{{Key: "Enter", Description: "Next level"}}, hints...)
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Finish"})
	case games.PhaseFailed:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Try again"},
			{Key: "Esc", Description: "Finish"},
		}
	}
	return []layout.KeyHint{
		{Key: "←↑↓→", Description: "Move"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Finish"},
	}
}

// HandlesEscape finishes the game on esc; the summary then leaves on any key.
func (s *PlayScreen) HandlesEscape() bool {
	return !s.finished && s.board != nil
}

// Close stops the timer and records the game if it was played.
func (s *PlayScreen) Close() {
	if s.board == nil {
		return
	}
	s.stopTicker()
	s.board.Stop()
	s.record()
}

func (s *PlayScreen) startTicker() tea.Cmd {
	s.tickGen++
	gen := s.tickGen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *PlayScreen) nextTick() tea.Cmd {
	gen := s.tickGen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// stopTicker invalidates any tick in flight.
func (s *PlayScreen) stopTicker() {
	s.tickGen++
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return s.handleTick(msg)

	case settleMsg:
		if msg.gen == s.settleGen {
			if st, ok := s.board.(settler); ok {
				st.Settle()
			}
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *PlayScreen) handleTick(msg tickMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != s.tickGen || s.board == nil || s.finished {
		return s, nil
	}
	if s.board.Tick(tickInterval) {
		s.stopTicker()
		s.last = nil
		return s, nil
	}
	if s.board.Phase() != games.PhasePlaying {
		s.stopTicker()
		return s, nil
	}
	return s, s.nextTick()
}

func (s *PlayScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.board == nil || s.finished {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if key == "esc" || key == "q" {
		s.finish()
		return s, nil
	}

	switch s.board.Phase() {
	case games.PhaseLevelComplete:
		switch key {
		case "enter", "n":
			if !s.board.HasNextLevel() {
				s.finish()
				return s, nil
			}
			return s, s.restart(s.board.Advance)
		case "r":
			return s, s.restart(s.board.Replay)
		}
		return s, nil

	case games.PhaseFailed:
		if key == "enter" || key == "r" {
			return s, s.restart(s.board.Replay)
		}
		return s, nil

	case games.PhasePlaying:
		return s.handlePlayingKey(key)
	}
	return s, nil
}

func (s *PlayScreen) handlePlayingKey(key string) (screen.Screen, tea.Cmd) {
	cols := s.board.Columns()
	n := s.board.Cells()

	switch key {
	case "left", "h":
		if cols > 1 && s.cursor%cols > 0 {
			s.cursor--
		}
	case "right", "l":
		if cols > 1 && s.cursor%cols < cols-1 && s.cursor+1 < n {
			s.cursor++
		}
	case "up", "k":
		if s.cursor-cols >= 0 {
			s.cursor -= cols
		} else if cols == 1 && s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor+cols < n {
			s.cursor += cols
		}
	case "enter", "space", " ":
		return s.choose(s.cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < n {
				s.cursor = idx
				return s.choose(idx)
			}
		}
	}
	return s, nil
}

func (s *PlayScreen) choose(i int) (screen.Screen, tea.Cmd) {
	out, err := s.board.Choose(i)
	if errors.Is(err, games.ErrInvalidChoice) {
		return s, nil
	}
	if err != nil {
		s.env.Log().Warn("game choice", zap.String("game", string(s.board.Kind())), zap.Error(err))
		return s, nil
	}
	s.last = &out
	s.cursor = min(s.cursor, max(0, s.board.Cells()-1))

	if out.LevelComplete {
		s.stopTicker()
		return s, nil
	}
	if out.Settle {
		s.settleGen++
		gen := s.settleGen
		return s, tea.Tick(settleDelay, func(time.Time) tea.Msg {
			return settleMsg{gen: gen}
		})
	}
	return s, nil
}

// restart runs Advance or Replay and starts a fresh ticker.
func (s *PlayScreen) restart(step func() error) tea.Cmd {
	if err := step(); err != nil {
		s.env.Log().Warn("game restart", zap.Error(err))
		return nil
	}
	s.cursor = 0
	s.last = nil
	return s.startTicker()
}

func (s *PlayScreen) finish() {
	s.stopTicker()
	s.board.Stop()
	s.record()
	s.finished = true
}

// record stores the game once, and only if something was played.
func (s *PlayScreen) record() {
	if s.recorded {
		return
	}
	sum := s.board.Summary()
	if sum.Correct+sum.Incorrect == 0 && sum.Completed == 0 {
		return
	}
	s.recorded = true
	_ = s.env.Record(sum.Activity(s.env.ChildID()))
}

func (s *PlayScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Center(theme.Incorrect.Render("Error: "+s.errMsg), width, height)
	}
	if s.finished {
		return s.renderSummary(width, height)
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString(s.renderStatus(cw))
	b.WriteString("\n\n")

	switch s.board.Phase() {
	case games.PhaseLevelComplete:
		b.WriteString(s.renderLevelComplete(cw))
	case games.PhaseFailed:
		b.WriteString(components.AccentPanel(
			lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render("Time's up!")+"\n"+
				theme.Hint.Render("That's okay. Press Enter to try this level again."),
			cw, theme.Warning))
	default:
		b.WriteString(components.Panel(s.board.Render(s.cursor, cw), cw))
		if s.last != nil {
			if m := s.last.Message(); m != "" {
				b.WriteString("\n")
				b.WriteString(feedbackStyle(*s.last).Render(m))
			}
		}
	}

	return layout.Center(b.String(), width, height)
}

func (s *PlayScreen) renderStatus(cw int) string {
	t := s.board.Timer()
	secs := t.SecondsLeft()
	timerStyle := lipgloss.NewStyle().Foreground(theme.Secondary)
	if secs <= timerWarnSecs && t.Running() {
		timerStyle = lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	}

	left := fmt.Sprintf("Level %d  ·  %s", s.board.Level(), s.board.Progress())
	right := fmt.Sprintf("Score %d  ·  ", s.board.Score()) + timerStyle.Render(fmt.Sprintf("⏱ %ds", secs))
	gap := max(1, cw-lipgloss.Width(left)-lipgloss.Width(right))
	status := theme.Body.Render(left) + strings.Repeat(" ", gap) + right

	bar := components.NewProgressBar("", float64(t.Remaining())/float64(t.Limit()), false, cw)
	return status + "\n" + bar.View()
}

func (s *PlayScreen) renderLevelComplete(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Correct.Render(fmt.Sprintf("Level %d complete!", s.board.Level())))
	b.WriteString("\n")
	if s.last != nil && s.last.Bonus > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Bonus +%d", s.last.Bonus)))
		b.WriteString("\n")
	}
	b.WriteString(theme.Body.Render(fmt.Sprintf("Score %d", s.board.Score())))
	b.WriteString("\n\n")
	if s.board.HasNextLevel() {
		b.WriteString(theme.Hint.Render("Enter for the next level, R to replay"))
	} else {
		b.WriteString(theme.Hint.Render("You finished every level! Enter to finish, R to replay"))
	}
	return components.AccentPanel(b.String(), cw, theme.Success)
}

func (s *PlayScreen) renderSummary(width, height int) string {
	sum := s.board.Summary()
	cw := layout.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Well played!"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Score %d of %d  ·  %.0f%%",
		sum.Score, sum.MaxScore, sum.Activity("").Percentage)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Levels completed %d  ·  Correct %d  ·  Missed %d",
		sum.Completed, sum.Correct, sum.Incorrect)))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Time played %s", sum.Duration.Round(time.Second))))
	if !s.recorded {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Nothing was played, so nothing was saved."))
	}
	return layout.Center(components.AccentPanel(b.String(), cw, theme.Primary), width, height)
}

func feedbackStyle(o outcome) lipgloss.Style {
	if o.Correct {
		return theme.Correct
	}
	return lipgloss.NewStyle().Foreground(theme.Warning)
}

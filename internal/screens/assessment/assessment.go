// Package assessment is the questionnaire screen: level selection,
// one-question-at-a-time answering, resume from snapshots and submission.
package assessment

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/screens/results"
	"github.com/autismart/autismart/internal/store"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
)

// snapshotsKept bounds the snapshot table.
const snapshotsKept = 20

type mode int

const (
	modeLevels mode = iota
	modeQuestion
	modeConfirmReset
)

// AssessmentScreen implements screen.Screen for the questionnaire.
type AssessmentScreen struct {
	env    *screens.Env
	sess   *assess.Session
	levels []catalog.Level

	mode     mode
	cursor   int // row on the level list: levels, then submit
	level    int // index into levels while answering
	question int // index into the level's questions
	mc       components.MultiChoice

	loaded  bool
	notice  string
	errMsg  string
	started bool // start event recorded
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)
var _ screen.EscapeHandler = (*AssessmentScreen)(nil)

// New creates an assessment screen for env's active child.
func New(env *screens.Env) *AssessmentScreen {
	return &AssessmentScreen{
		env:    env,
		sess:   assess.NewSession(uuid.NewString(), env.Catalog),
		levels: env.Catalog.Levels,
	}
}

func (s *AssessmentScreen) Init() tea.Cmd {
	repo := s.env.Snapshots
	childID := s.env.ChildID()
	return func() tea.Msg {
		if repo == nil {
			return resumeLoadedMsg{}
		}
		snap, err := repo.Latest(context.Background())
		if err != nil {
			return resumeLoadedMsg{Err: err}
		}
		if snap == nil || snap.Data.Assessment == nil || snap.Data.Assessment.ChildID != childID {
			return resumeLoadedMsg{}
		}
		return resumeLoadedMsg{Data: snap.Data.Assessment}
	}
}

func (s *AssessmentScreen) Title() string {
	return "Assessment"
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeQuestion:
		return []layout.KeyHint{
			{Key: s.answerKeys(), Description: "Answer"},
			{Key: "←→", Description: "Prev/Next"},
			{Key: "Esc", Description: "Levels"},
		}
	case modeConfirmReset:
		return []layout.KeyHint{
			{Key: "Y", Description: "Clear answers"},
			{Key: "N", Description: "Keep them"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Save & exit"},
	}
}

// answerKeys names the digit keys that answer the shown question.
func (s *AssessmentScreen) answerKeys() string {
	return fmt.Sprintf("1-%d", len(s.currentLevel().Questions[s.question].Options))
}

// HandlesEscape returns true while answering, where esc goes back to the
// level list instead of leaving the screen.
func (s *AssessmentScreen) HandlesEscape() bool {
	return s.mode != modeLevels
}

func (s *AssessmentScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if !s.loaded {
		return renderLoading(width, height)
	}
	switch s.mode {
	case modeQuestion:
		return s.renderQuestionView(width, height)
	case modeConfirmReset:
		return renderResetConfirm(width, height)
	}
	return s.renderLevelList(width, height)
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resumeLoadedMsg:
		return s.handleResume(msg)

	case submitMsg:
		return s.handleSubmit()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *AssessmentScreen) handleResume(msg resumeLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.env.Log().Warn("load assessment snapshot", zap.Error(msg.Err))
		return s, nil
	}
	if msg.Data == nil {
		return s, nil
	}

	skipped, err := s.sess.Restore(*msg.Data)
	if err != nil {
		s.env.Log().Warn("restore assessment", zap.Error(err))
		s.sess.Reset()
		return s, nil
	}
	if len(skipped) > 0 {
		s.env.Log().Info("dropped answers no longer in catalog",
			zap.String("session_id", s.sess.ID),
			zap.Strings("questions", skipped))
	}

	s.started = s.sess.State() == assess.StateInProgress
	answered := s.sess.Scorer().Answered()
	s.notice = fmt.Sprintf("Welcome back! %d of %d questions already answered.", answered, s.env.Catalog.Total())
	for i, l := range s.levels {
		if l.Key == s.sess.CurrentLevel() {
			s.cursor = i
		}
	}
	return s, nil
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.loaded {
		return s, nil
	}

	switch s.mode {
	case modeConfirmReset:
		switch key {
		case "y", "Y":
			s.reset()
			s.mode = modeLevels
		case "n", "N", "esc":
			s.mode = modeLevels
		}
		return s, nil

	case modeQuestion:
		return s.handleQuestionKey(msg)
	}

	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.levels) {
			s.cursor++
		}
	case "r", "R":
		if s.sess.Scorer().Answered() > 0 {
			s.mode = modeConfirmReset
		}
	case "s", "S":
		return s, func() tea.Msg { return submitMsg{} }
	case "enter":
		if s.cursor == len(s.levels) {
			return s, func() tea.Msg { return submitMsg{} }
		}
		s.openLevel(s.cursor)
	}
	return s, nil
}

func (s *AssessmentScreen) handleQuestionKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeLevels
		return s, nil
	case "left", "h":
		if s.question > 0 {
			s.showQuestion(s.question - 1)
		}
		return s, nil
	case "right", "l", "tab":
		if s.question < len(s.currentLevel().Questions)-1 {
			s.showQuestion(s.question + 1)
		}
		return s, nil
	}

	s.mc, _ = s.mc.Update(msg)
	if s.mc.Done() {
		s.answer(s.mc.Choice())
	}
	return s, nil
}

func (s *AssessmentScreen) currentLevel() catalog.Level {
	return s.levels[s.level]
}

// openLevel starts answering at the level's first unanswered question.
func (s *AssessmentScreen) openLevel(i int) {
	l := s.levels[i]
	s.markStarted()
	if err := s.sess.SelectLevel(l.Key); err != nil {
		s.notice = err.Error()
		return
	}
	s.level = i
	s.notice = ""
	s.mode = modeQuestion

	first := 0
	for qi, q := range l.Questions {
		if _, ok := s.sess.Scorer().Answer(q.ID); !ok {
			first = qi
			break
		}
	}
	s.showQuestion(first)
}

func (s *AssessmentScreen) showQuestion(i int) {
	q := s.currentLevel().Questions[i]
	s.question = i
	s.mc = components.NewMultiChoice(q.Text, q.Options)
	if a, ok := s.sess.Scorer().Answer(q.ID); ok {
		s.mc = s.mc.WithRecorded(a.OptionIndex)
	}
}

func (s *AssessmentScreen) answer(idx int) {
	q := s.currentLevel().Questions[s.question]
	s.markStarted()

	a, err := s.sess.RecordAnswer(q.ID, idx)
	if err != nil {
		s.notice = err.Error()
		s.showQuestion(s.question)
		return
	}

	ctx := context.Background()
	if s.env.Events != nil {
		if err := s.env.Events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:   s.sess.ID,
			ChildID:     s.env.ChildID(),
			QuestionID:  q.ID,
			Category:    string(q.Category),
			Level:       string(s.currentLevel().Key),
			OptionIndex: a.OptionIndex,
			Score:       a.Score,
		}); err != nil {
			s.env.Log().Warn("append answer event", zap.Error(err))
		}
	}
	s.saveSnapshot(ctx)

	if next := s.nextUnanswered(); next >= 0 {
		s.showQuestion(next)
		return
	}

	s.mode = modeLevels
	s.notice = fmt.Sprintf("%s complete.", s.currentLevel().Title)
	if s.sess.Scorer().Remaining() == 0 {
		s.cursor = len(s.levels)
		s.notice = "Every question is answered. Press Enter on Submit to see the results."
	} else if s.cursor < len(s.levels)-1 {
		s.cursor++
	}
}

// nextUnanswered returns the index of the next unanswered question in the
// current level after the current one, wrapping once, or -1.
func (s *AssessmentScreen) nextUnanswered() int {
	qs := s.currentLevel().Questions
	for step := 1; step <= len(qs); step++ {
		i := (s.question + step) % len(qs)
		if _, ok := s.sess.Scorer().Answer(qs[i].ID); !ok {
			return i
		}
	}
	return -1
}

func (s *AssessmentScreen) markStarted() {
	if s.started {
		return
	}
	s.started = true
	s.appendSessionEvent(store.SessionEventData{Action: store.SessionActionStart})
}

func (s *AssessmentScreen) appendSessionEvent(data store.SessionEventData) {
	if s.env.Events == nil {
		return
	}
	data.SessionID = s.sess.ID
	data.ChildID = s.env.ChildID()
	if err := s.env.Events.AppendSessionEvent(context.Background(), data); err != nil {
		s.env.Log().Warn("append session event", zap.String("action", data.Action), zap.Error(err))
	}
}

func (s *AssessmentScreen) handleSubmit() (screen.Screen, tea.Cmd) {
	report, err := s.sess.Submit()
	var incomplete *assess.IncompleteAssessmentError
	switch {
	case errors.As(err, &incomplete):
		s.notice = fmt.Sprintf("%d questions still need an answer.", incomplete.Remaining)
		s.cursor = s.firstIncompleteLevel()
		return s, nil
	case err != nil:
		s.notice = err.Error()
		return s, nil
	}

	s.appendSessionEvent(store.SessionEventData{
		Action:       store.SessionActionSubmit,
		Answered:     report.Result.TotalQuestions,
		TotalScore:   report.Result.TotalScore,
		SupportLevel: string(report.Level),
	})
	rec := report.Activity(s.env.ChildID(), s.sess.Duration())
	_ = s.env.Record(rec)
	s.clearSnapshot(context.Background())

	s.env.Log().Info("assessment submitted",
		zap.String("session_id", s.sess.ID),
		zap.Int("total_score", report.Result.TotalScore),
		zap.String("support_level", string(report.Level)))

	resultScreen := results.New(s.env, report)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: resultScreen}
	}
}

func (s *AssessmentScreen) firstIncompleteLevel() int {
	for i, l := range s.levels {
		if answered, total := s.sess.LevelProgress(l.Key); answered < total {
			return i
		}
	}
	return len(s.levels)
}

func (s *AssessmentScreen) reset() {
	s.sess.Reset()
	s.appendSessionEvent(store.SessionEventData{Action: store.SessionActionReset})
	s.sess.ID = uuid.NewString()
	s.started = false
	s.cursor = 0
	s.notice = "Answers cleared."
	s.clearSnapshot(context.Background())
}

func (s *AssessmentScreen) saveSnapshot(ctx context.Context) {
	data := s.sess.Snapshot()
	data.ChildID = s.env.ChildID()
	s.writeSnapshot(ctx, &data)
}

func (s *AssessmentScreen) clearSnapshot(ctx context.Context) {
	s.writeSnapshot(ctx, nil)
}

func (s *AssessmentScreen) writeSnapshot(ctx context.Context, data *assess.SnapshotData) {
	repo := s.env.Snapshots
	if repo == nil {
		return
	}
	snap := &store.Snapshot{
		Timestamp: s.env.Clock(),
		Data: store.SnapshotData{
			Version:    1,
			Assessment: data,
		},
	}
	if err := repo.Save(ctx, snap); err != nil {
		s.env.Log().Warn("save snapshot", zap.Error(err))
		return
	}
	if err := repo.Prune(ctx, snapshotsKept); err != nil {
		s.env.Log().Warn("prune snapshots", zap.Error(err))
	}
}

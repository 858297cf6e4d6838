package assessment

import (
	"fmt"
	"sort"
	"time"

	"github.com/autismart/autismart/internal/catalog"
)

// State is the lifecycle position of an assessment session.
type State int

const (
	StateNotStarted State = iota // No answers, nothing shown yet
	StateInProgress              // Navigating levels and answering
	StateSubmitted               // All questions answered and report produced
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Session drives one child's questionnaire from start to submission.
type Session struct {
	// ID identifies the session in stored events and snapshots.
	ID string

	scorer *Scorer
	state  State
	level  catalog.LevelKey
	report *Report

	startedAt   time.Time
	submittedAt time.Time
	now         func() time.Time
}

// NewSession creates a session over c in the NotStarted state.
func NewSession(id string, c *catalog.Catalog) *Session {
	return &Session{
		ID:     id,
		scorer: NewScorer(c),
		state:  StateNotStarted,
		now:    time.Now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Scorer exposes the underlying answers.
func (s *Session) Scorer() *Scorer { return s.scorer }

// CurrentLevel returns the level selected for navigation, if any.
func (s *Session) CurrentLevel() catalog.LevelKey { return s.level }

// Report returns the submitted report, or nil before submission.
func (s *Session) Report() *Report { return s.report }

// Start moves a NotStarted session into progress. It is a no-op otherwise.
func (s *Session) Start() {
	if s.state != StateNotStarted {
		return
	}
	s.state = StateInProgress
	s.startedAt = s.now()
}

// SelectLevel navigates to a level. Levels may be visited in any order.
func (s *Session) SelectLevel(key catalog.LevelKey) error {
	if s.state == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if _, err := s.scorer.Catalog().Level(key); err != nil {
		return err
	}
	s.Start()
	s.level = key
	return nil
}

// RecordAnswer validates and stores an answer, starting the session if needed.
func (s *Session) RecordAnswer(questionID string, optionIndex int) (Answer, error) {
	if s.state == StateSubmitted {
		return Answer{}, ErrAlreadySubmitted
	}
	a, err := s.scorer.RecordAnswer(questionID, optionIndex)
	if err != nil {
		return Answer{}, err
	}
	s.Start()
	return a, nil
}

// LevelProgress returns how many questions of a level are answered.
func (s *Session) LevelProgress(key catalog.LevelKey) (answered, total int) {
	l, err := s.scorer.Catalog().Level(key)
	if err != nil {
		return 0, 0
	}
	for _, q := range l.Questions {
		if _, ok := s.scorer.Answer(q.ID); ok {
			answered++
		}
	}
	return answered, len(l.Questions)
}

// Submit produces the report once every question is answered. While
// questions remain it returns *IncompleteAssessmentError and the state is
// unchanged.
func (s *Session) Submit() (*Report, error) {
	if s.state == StateSubmitted {
		return s.report, ErrAlreadySubmitted
	}
	report, err := s.scorer.Evaluate()
	if err != nil {
		return nil, err
	}
	s.Start()
	s.state = StateSubmitted
	s.submittedAt = s.now()
	report.Result = report.Result.clone()
	s.report = report
	return report, nil
}

// Reset clears all answers and returns to NotStarted.
func (s *Session) Reset() {
	s.scorer.Reset()
	s.state = StateNotStarted
	s.level = ""
	s.report = nil
	s.startedAt = time.Time{}
	s.submittedAt = time.Time{}
}

// Duration returns time spent from start to submission, or to now while
// in progress.
func (s *Session) Duration() time.Duration {
	switch s.state {
	case StateNotStarted:
		return 0
	case StateSubmitted:
		return s.submittedAt.Sub(s.startedAt)
	default:
		return s.now().Sub(s.startedAt)
	}
}

// SnapshotVersion is bumped when SnapshotData changes shape.
const SnapshotVersion = 1

// SnapshotData is the resumable state of an unfinished session.
type SnapshotData struct {
	Version   int              `json:"version"`
	SessionID string           `json:"session_id"`
	ChildID   string           `json:"child_id,omitempty"`
	Level     catalog.LevelKey `json:"level,omitempty"`
	Answers   map[string]int   `json:"answers"`
	StartedAt time.Time        `json:"started_at"`
}

// Snapshot captures the answers so the session can be resumed later.
func (s *Session) Snapshot() SnapshotData {
	answers := make(map[string]int, s.scorer.Answered())
	for _, a := range s.scorer.Answers() {
		answers[a.QuestionID] = a.OptionIndex
	}
	return SnapshotData{
		Version:   SnapshotVersion,
		SessionID: s.ID,
		Level:     s.level,
		Answers:   answers,
		StartedAt: s.startedAt,
	}
}

// Restore replaces the session's answers with those in data. Answers that no
// longer fit the catalog are reported and skipped.
func (s *Session) Restore(data SnapshotData) (skipped []string, err error) {
	if data.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", data.Version)
	}
	s.Reset()
	if data.SessionID != "" {
		s.ID = data.SessionID
	}
	for id, idx := range data.Answers {
		if _, err := s.scorer.RecordAnswer(id, idx); err != nil {
			skipped = append(skipped, id)
		}
	}
	sort.Strings(skipped)
	if s.scorer.Answered() > 0 || data.Level != "" {
		s.state = StateInProgress
		s.startedAt = data.StartedAt
		if s.startedAt.IsZero() {
			s.startedAt = s.now()
		}
	}
	if _, lerr := s.scorer.Catalog().Level(data.Level); lerr == nil {
		s.level = data.Level
	}
	return skipped, nil
}

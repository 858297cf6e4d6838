package games

import (
	"time"

	"github.com/autismart/autismart/internal/activity"
)

// Tally accumulates score and answer counts across the levels of a game.
// The current level can be discarded when it fails, taking its points and
// answer counts with it.
type Tally struct {
	Score     int
	Correct   int
	Incorrect int
	Elapsed   time.Duration

	levelStart     int
	levelCorrect   int
	levelIncorrect int
}

// BeginLevel marks the start of a level.
func (t *Tally) BeginLevel() {
	t.levelStart = t.Score
	t.levelCorrect = 0
	t.levelIncorrect = 0
}

// Award records a correct answer worth points.
func (t *Tally) Award(points int) {
	t.Score += points
	t.Correct++
	t.levelCorrect++
}

// Miss records an incorrect answer, subtracting penalty down to zero.
func (t *Tally) Miss(penalty int) {
	t.Score = Floor(t.Score, penalty)
	t.Incorrect++
	t.levelIncorrect++
}

// Bonus adds points without counting an answer.
func (t *Tally) Bonus(points int) {
	t.Score += points
}

// DiscardLevel drops every point and answer recorded since BeginLevel.
func (t *Tally) DiscardLevel() {
	t.Score = t.levelStart
	t.Correct -= t.levelCorrect
	t.Incorrect -= t.levelIncorrect
	t.levelCorrect = 0
	t.levelIncorrect = 0
}

// LevelPoints returns points earned since BeginLevel.
func (t *Tally) LevelPoints() int { return t.Score - t.levelStart }

// LevelCorrect returns correct answers since BeginLevel.
func (t *Tally) LevelCorrect() int { return t.levelCorrect }

// LevelIncorrect returns incorrect answers since BeginLevel.
func (t *Tally) LevelIncorrect() int { return t.levelIncorrect }

// LevelAccuracy returns the level's correct share in [0,1], or 0 with no answers.
func (t *Tally) LevelAccuracy() float64 {
	n := t.levelCorrect + t.levelIncorrect
	if n == 0 {
		return 0
	}
	return float64(t.levelCorrect) / float64(n)
}

// Summary is the end-of-play result of a game.
type Summary struct {
	Kind      Kind
	Level     int
	Completed int // levels completed
	Score     int
	MaxScore  int
	Correct   int
	Incorrect int
	Duration  time.Duration
}

// Activity converts a summary into an activity record for childID.
func (s Summary) Activity(childID string) activity.Record {
	return activity.Record{
		ChildID:          childID,
		Type:             activity.TypeGame,
		Name:             s.Kind.DisplayName(),
		Score:            s.Score,
		MaxScore:         s.MaxScore,
		Percentage:       activity.Percent(s.Score, s.MaxScore),
		Duration:         s.Duration,
		CorrectAnswers:   s.Correct,
		IncorrectAnswers: s.Incorrect,
		Details: map[string]any{
			"game":             string(s.Kind),
			"level":            s.Level,
			"levels_completed": s.Completed,
		},
	}
}

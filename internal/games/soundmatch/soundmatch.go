// Package soundmatch implements the sound matching game: hear (or read) a
// sound and pick what makes it.
package soundmatch

import (
	"math/rand/v2"
	"time"

	"github.com/autismart/autismart/internal/games"
)

const (
	CorrectPoints      = 50
	WrongPenalty       = 10
	AccuracyBonus      = 100
	AccuracyThreshold  = 0.8
	LevelBonusPerLevel = 25
	LevelTime          = 45 * time.Second
	OptionCount        = 4
	MaxLevel           = 5
)

// Sound is something the child can hear and name.
type Sound struct {
	Source string // what makes the sound
	Cue    string // how the sound is written out on screen
}

// Library is the set of sounds rounds are drawn from.
var Library = []Sound{
	{"Dog", "Woof woof!"},
	{"Cat", "Meow!"},
	{"Cow", "Moooo!"},
	{"Duck", "Quack quack!"},
	{"Car", "Beep beep!"},
	{"Bell", "Ding dong!"},
	{"Train", "Choo choo!"},
	{"Clock", "Tick tock"},
	{"Phone", "Ring ring!"},
	{"Rain", "Pitter patter"},
}

// RoundsForLevel returns how many rounds level n has.
func RoundsForLevel(n int) int { return 5 + n }

// Round is a single prompt.
type Round struct {
	Sound   Sound
	Options []Sound
	answer  int
}

// Correct returns the index of the matching option.
func (r Round) Correct() int { return r.answer }

// Bonus breaks down the points added when a level completes.
type Bonus struct {
	Accuracy int
	Level    int
}

// Total sums the bonus parts.
func (b Bonus) Total() int { return b.Accuracy + b.Level }

// Feedback describes the result of one answer.
type Feedback struct {
	Correct       bool
	Points        int
	LevelComplete bool
	Bonus         Bonus
}

// Game is the sound matching state machine. Each round advances on any
// answer; wrong answers cost points.
type Game struct {
	rng   *rand.Rand
	phase games.Phase
	level int
	round int
	cur   Round
	tally games.Tally
	timer games.Countdown
	done  int
	bonus Bonus
}

// New creates a game at level 1 in the Idle phase.
func New(rng *rand.Rand) *Game {
	return &Game{
		rng:   rng,
		phase: games.PhaseIdle,
		level: 1,
		timer: games.NewCountdown(LevelTime),
	}
}

func (g *Game) Phase() games.Phase { return g.phase }
func (g *Game) Level() int { return g.level }
func (g *Game) Round() int { return g.round }
func (g *Game) Rounds() int { return RoundsForLevel(g.level) }
func (g *Game) Current() Round { return g.cur }
func (g *Game) Score() int { return g.tally.Score }
func (g *Game) Timer() *games.Countdown { return &g.timer }
func (g *Game) LastBonus() Bonus { return g.bonus }
func (g *Game) HasNextLevel() bool { return g.level < MaxLevel }

// Start begins the current level from its first round.
func (g *Game) Start() {
	g.tally.BeginLevel()
	g.round = 0
	g.bonus = Bonus{}
	g.phase = games.PhasePlaying
	g.timer.Start()
	g.nextRound()
}

func (g *Game) nextRound() {
	target, opts := games.Choices(g.rng, len(Library), OptionCount)
	r := Round{Sound: Library[target], Options: make([]Sound, len(opts))}
	for i, idx := range opts {
		r.Options[i] = Library[idx]
		if idx == target {
			r.answer = i
		}
	}
	g.cur = r
}

// Answer picks option i for the current round.
func (g *Game) Answer(i int) (Feedback, error) {
	if g.phase != games.PhasePlaying {
		return Feedback{}, games.ErrNotPlaying
	}
	if i < 0 || i >= len(g.cur.Options) {
		return Feedback{}, games.ErrInvalidChoice
	}

	var fb Feedback
	if i == g.cur.answer {
		g.tally.Award(CorrectPoints)
		fb = Feedback{Correct: true, Points: CorrectPoints}
	} else {
		before := g.tally.Score
		g.tally.Miss(WrongPenalty)
		fb = Feedback{Points: g.tally.Score - before}
	}

	g.round++
	if g.round < g.Rounds() {
		g.nextRound()
		return fb, nil
	}

	g.timer.Stop()
	g.bonus = Bonus{Level: g.level * LevelBonusPerLevel}
	if g.tally.LevelAccuracy() >= AccuracyThreshold {
		g.bonus.Accuracy = AccuracyBonus
	}
	g.tally.Bonus(g.bonus.Total())
	g.done++
	g.phase = games.PhaseLevelComplete

	fb.LevelComplete = true
	fb.Bonus = g.bonus
	return fb, nil
}

// Tick advances the level timer. When it runs out the level fails and
// its points are discarded.
func (g *Game) Tick(d time.Duration) (timedOut bool) {
	if g.phase != games.PhasePlaying {
		return false
	}
	g.tally.Elapsed += d
	if !g.timer.Tick(d) {
		return false
	}
	g.tally.DiscardLevel()
	g.round = 0
	g.phase = games.PhaseFailed
	return true
}

// Advance moves to the next level after a completed one.
func (g *Game) Advance() error {
	if g.phase != games.PhaseLevelComplete {
		return games.ErrLevelNotComplete
	}
	if !g.HasNextLevel() {
		return games.ErrNoMoreLevels
	}
	g.level++
	g.Start()
	return nil
}

// Replay restarts the current level after completion or failure.
func (g *Game) Replay() error {
	switch g.phase {
	case games.PhaseLevelComplete:
		g.tally.DiscardLevel()
		g.done--
	case games.PhaseFailed:
	default:
		return games.ErrLevelNotComplete
	}
	g.Start()
	return nil
}

// Stop ends play and freezes the timer.
func (g *Game) Stop() {
	g.timer.Stop()
	if g.phase == games.PhasePlaying {
		g.phase = games.PhaseIdle
	}
}

// MaxLevelScore is the best possible score for level n.
func MaxLevelScore(n int) int {
	return RoundsForLevel(n)*CorrectPoints + AccuracyBonus + n*LevelBonusPerLevel
}

// Summary reports the game so far.
func (g *Game) Summary() games.Summary {
	maxScore := 0
	for n := 1; n <= g.level; n++ {
		maxScore += MaxLevelScore(n)
	}
	return games.Summary{
		Kind:      games.KindSoundMatch,
		Level:     g.level,
		Completed: g.done,
		Score:     g.tally.Score,
		MaxScore:  maxScore,
		Correct:   g.tally.Correct,
		Incorrect: g.tally.Incorrect,
		Duration:  g.tally.Elapsed,
	}
}

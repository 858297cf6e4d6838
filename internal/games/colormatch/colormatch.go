// Package colormatch implements the color matching game: pick the swatch
// that matches the target color before the level timer runs out.
package colormatch

import (
	"math/rand/v2"
	"time"

	"github.com/autismart/autismart/internal/games"
)

const (
	CorrectPoints      = 100
	WrongPenalty       = 20
	LevelTime          = 30 * time.Second
	TimeBonusPerSecond = 5
	PerfectBonus       = 200
	LevelBonusPerLevel = 50
	SwatchCount        = 4
	MaxLevel           = 5
)

// Color is a named swatch.
type Color struct {
	Name string
	Hex  string
}

// Palette is the set of colors rounds are drawn from.
var Palette = []Color{
	{"Red", "#EF4444"},
	{"Orange", "#F97316"},
	{"Yellow", "#EAB308"},
	{"Green", "#22C55E"},
	{"Blue", "#3B82F6"},
	{"Purple", "#8B5CF6"},
	{"Pink", "#EC4899"},
	{"Brown", "#92400E"},
}

// RoundsForLevel returns how many rounds level n has.
func RoundsForLevel(n int) int { return 4 + n }

// Round is a single prompt.
type Round struct {
	Target   Color
	Swatches []Color
	answer   int
}

// Correct returns the index of the matching swatch.
func (r Round) Correct() int { return r.answer }

// Bonus breaks down the points added when a level completes.
type Bonus struct {
	Time    int
	Perfect int
	Level   int
}

// Total sums the bonus parts.
func (b Bonus) Total() int { return b.Time + b.Perfect + b.Level }

// Feedback describes the result of one answer.
type Feedback struct {
	Correct       bool
	Points        int // signed change to the score
	LevelComplete bool
	Bonus         Bonus
}

// Game is the color matching state machine.
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
	target, opts := games.Choices(g.rng, len(Palette), SwatchCount)
	r := Round{Target: Palette[target], Swatches: make([]Color, len(opts))}
	for i, idx := range opts {
		r.Swatches[i] = Palette[idx]
		if idx == target {
			r.answer = i
		}
	}
	g.cur = r
}

// Answer picks swatch i for the current round.
func (g *Game) Answer(i int) (Feedback, error) {
	if g.phase != games.PhasePlaying {
		return Feedback{}, games.ErrNotPlaying
	}
	if i < 0 || i >= len(g.cur.Swatches) {
		return Feedback{}, games.ErrInvalidChoice
	}

	if i != g.cur.answer {
		before := g.tally.Score
		g.tally.Miss(WrongPenalty)
		return Feedback{Points: g.tally.Score - before}, nil
	}

	g.tally.Award(CorrectPoints)
	fb := Feedback{Correct: true, Points: CorrectPoints}

	g.round++
	if g.round < g.Rounds() {
		g.nextRound()
		return fb, nil
	}

	g.timer.Stop()
	g.bonus = Bonus{
		Time:  g.timer.SecondsLeft() * TimeBonusPerSecond,
		Level: g.level * LevelBonusPerLevel,
	}
	if g.tally.LevelIncorrect() == 0 {
		g.bonus.Perfect = PerfectBonus
	}
	g.tally.Bonus(g.bonus.Total())
	g.done++
	g.phase = games.PhaseLevelComplete

	fb.LevelComplete = true
	fb.Bonus = g.bonus
	return fb, nil
}

// Tick advances the level timer. When it runs out the level fails, its
// points are discarded and the phase becomes Failed.
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

// Replay restarts the current level after completion or failure. A
// completed level's points are given back so it only counts once.
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
	return RoundsForLevel(n)*CorrectPoints +
		int(LevelTime/time.Second)*TimeBonusPerSecond +
		PerfectBonus + n*LevelBonusPerLevel
}

// Summary reports the game so far.
func (g *Game) Summary() games.Summary {
	maxScore := 0
	for n := 1; n <= g.level; n++ {
		maxScore += MaxLevelScore(n)
	}
	return games.Summary{
		Kind:      games.KindColorMatch,
		Level:     g.level,
		Completed: g.done,
		Score:     g.tally.Score,
		MaxScore:  maxScore,
		Correct:   g.tally.Correct,
		Incorrect: g.tally.Incorrect,
		Duration:  g.tally.Elapsed,
	}
}

// Package emotion implements the emotion recognition game: look at a face
// and a short scene and name the feeling.
package emotion

import (
	"math/rand/v2"
	"time"

	"github.com/autismart/autismart/internal/games"
)

const (
	CorrectPoints      = 10
	PerfectBonus       = 20
	LevelBonusPerLevel = 5
	RoundsPerLevel     = 5
	LevelTime          = 60 * time.Second
	OptionCount        = 4
	MaxLevel           = 3
)

// Emotion is a feeling with the face and scenes used to prompt it.
type Emotion struct {
	Name   string
	Face   string
	Scenes []string
}

// Emotions is the set rounds are drawn from.
var Emotions = []Emotion{
	{"Happy", "😀", []string{"Getting a present", "Playing at the park"}},
	{"Sad", "😢", []string{"Dropping an ice cream", "A friend moving away"}},
	{"Angry", "😠", []string{"Someone knocks over a tower", "Toy taken away"}},
	{"Scared", "😨", []string{"A loud thunderstorm", "A big barking dog"}},
	{"Surprised", "😲", []string{"A surprise party", "A jack-in-the-box pops up"}},
	{"Calm", "😌", []string{"Reading a bedtime story", "Lying in the grass"}},
}

// Round is a single prompt.
type Round struct {
	Emotion Emotion
	Scene   string
	Options []string
	answer  int
}

// Correct returns the index of the matching option.
func (r Round) Correct() int { return r.answer }

// Bonus breaks down the points added when a level completes.
type Bonus struct {
	Perfect int
	Level   int
}

// Total sums the bonus parts.
func (b Bonus) Total() int { return b.Perfect + b.Level }

// Feedback describes the result of one answer.
type Feedback struct {
	Correct       bool
	Points        int
	LevelComplete bool
	Bonus         Bonus
}

// Game is the emotion recognition state machine. Wrong answers cost
// nothing; the round advances either way.
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
func (g *Game) Rounds() int { return RoundsPerLevel }
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
	target, opts := games.Choices(g.rng, len(Emotions), OptionCount)
	e := Emotions[target]
	r := Round{
		Emotion: e,
		Scene:   e.Scenes[g.rng.IntN(len(e.Scenes))],
		Options: make([]string, len(opts)),
	}
	for i, idx := range opts {
		r.Options[i] = Emotions[idx].Name
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
		g.tally.Miss(0)
	}

	g.round++
	if g.round < RoundsPerLevel {
		g.nextRound()
		return fb, nil
	}

	g.timer.Stop()
	g.bonus = Bonus{Level: g.level * LevelBonusPerLevel}
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
	return RoundsPerLevel*CorrectPoints + PerfectBonus + n*LevelBonusPerLevel
}

// Summary reports the game so far.
func (g *Game) Summary() games.Summary {
	maxScore := 0
	for n := 1; n <= g.level; n++ {
		maxScore += MaxLevelScore(n)
	}
	return games.Summary{
		Kind:      games.KindEmotion,
		Level:     g.level,
		Completed: g.done,
		Score:     g.tally.Score,
		MaxScore:  maxScore,
		Correct:   g.tally.Correct,
		Incorrect: g.tally.Incorrect,
		Duration:  g.tally.Elapsed,
	}
}

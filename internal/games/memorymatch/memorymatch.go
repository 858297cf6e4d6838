// Package memorymatch implements the memory card game: flip two cards at a
// time and find every pair before the level timer runs out.
package memorymatch

import (
	"math/rand/v2"
	"time"

	"github.com/autismart/autismart/internal/games"
)

const (
	MatchPoints        = 50
	MoveBonusPerMove   = 20
	TimeBonusPerSecond = 2
	LevelTime          = 60 * time.Second
	MaxLevel           = 4
)

// Faces are the card pictures pairs are drawn from.
var Faces = []string{"🐶", "🐱", "🦊", "🐼", "🐸", "🐵", "🦁", "🐷"}

// PairsForLevel returns the number of pairs on level n.
func PairsForLevel(n int) int { return min(2+n, 6) }

// Card is one position on the board.
type Card struct {
	Face    string
	FaceUp  bool
	Matched bool
}

// FlipResult reports what a flip did.
type FlipResult int

const (
	FlipFirst    FlipResult = iota // First card of a move turned over
	FlipMatch                      // Second card matched the first
	FlipMismatch                   // Second card did not match; both stay up until the next flip
)

// Bonus breaks down the points added when a level completes.
type Bonus struct {
	Moves int
	Time  int
}

// Total sums the bonus parts.
func (b Bonus) Total() int { return b.Moves + b.Time }

// Feedback describes the result of one flip.
type Feedback struct {
	Result        FlipResult
	Points        int
	LevelComplete bool
	Bonus         Bonus
}

// Game is the memory match state machine.
type Game struct {
	rng     *rand.Rand
	phase   games.Phase
	level   int
	cards   []Card
	first   int   // index of the face-up unmatched card, or -1
	pending []int // mismatched pair still showing
	moves   int
	matched int
	tally   games.Tally
	timer   games.Countdown
	done    int
	bonus   Bonus
}

// New creates a game at level 1 in the Idle phase.
func New(rng *rand.Rand) *Game {
	return &Game{
		rng:   rng,
		phase: games.PhaseIdle,
		level: 1,
		first: -1,
		timer: games.NewCountdown(LevelTime),
	}
}

func (g *Game) Phase() games.Phase { return g.phase }
func (g *Game) Level() int { return g.level }
func (g *Game) Cards() []Card { return g.cards }
func (g *Game) Moves() int { return g.moves }
func (g *Game) Pairs() int { return PairsForLevel(g.level) }
func (g *Game) Matched() int { return g.matched }
func (g *Game) Score() int { return g.tally.Score }
func (g *Game) Timer() *games.Countdown { return &g.timer }
func (g *Game) LastBonus() Bonus { return g.bonus }
func (g *Game) HasNextLevel() bool { return g.level < MaxLevel }

// Start deals a fresh shuffled board for the current level.
func (g *Game) Start() {
	pairs := g.Pairs()
	faces := g.rng.Perm(len(Faces))[:pairs]
	g.cards = make([]Card, 0, pairs*2)
	for _, f := range faces {
		g.cards = append(g.cards, Card{Face: Faces[f]}, Card{Face: Faces[f]})
	}
	g.rng.Shuffle(len(g.cards), func(i, j int) {
		g.cards[i], g.cards[j] = g.cards[j], g.cards[i]
	})

	g.tally.BeginLevel()
	g.first = -1
	g.pending = nil
	g.moves = 0
	g.matched = 0
	g.bonus = Bonus{}
	g.phase = games.PhasePlaying
	g.timer.Start()
}

// Settle turns a showing mismatched pair face down.
func (g *Game) Settle() {
	for _, i := range g.pending {
		g.cards[i].FaceUp = false
	}
	g.pending = nil
}

// Flip turns card i face up.
func (g *Game) Flip(i int) (Feedback, error) {
	if g.phase != games.PhasePlaying {
		return Feedback{}, games.ErrNotPlaying
	}
	if i < 0 || i >= len(g.cards) {
		return Feedback{}, games.ErrInvalidChoice
	}
	g.Settle()
	if g.cards[i].FaceUp || g.cards[i].Matched {
		return Feedback{}, games.ErrInvalidChoice
	}

	g.cards[i].FaceUp = true
	if g.first < 0 {
		g.first = i
		return Feedback{Result: FlipFirst}, nil
	}

	first := g.first
	g.first = -1
	g.moves++

	if g.cards[first].Face != g.cards[i].Face {
		g.tally.Miss(0)
		g.pending = []int{first, i}
		return Feedback{Result: FlipMismatch}, nil
	}

	g.cards[first].Matched = true
	g.cards[i].Matched = true
	g.matched++
	g.tally.Award(MatchPoints)
	fb := Feedback{Result: FlipMatch, Points: MatchPoints}

	if g.matched < g.Pairs() {
		return fb, nil
	}

	g.timer.Stop()
	g.bonus = Bonus{
		Moves: max(0, 2*g.Pairs()-g.moves) * MoveBonusPerMove,
		Time:  g.timer.SecondsLeft() * TimeBonusPerSecond,
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
	g.phase = games.PhaseFailed
	return true
}

// Advance deals the next level after a completed one.
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

// Replay re-deals the current level after completion or failure.
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

// MaxLevelScore is the best possible score for level n: every pair found
// on the first try with the full timer left.
func MaxLevelScore(n int) int {
	pairs := PairsForLevel(n)
	return pairs*MatchPoints + pairs*MoveBonusPerMove + int(LevelTime/time.Second)*TimeBonusPerSecond
}

// Summary reports the game so far.
func (g *Game) Summary() games.Summary {
	maxScore := 0
	for n := 1; n <= g.level; n++ {
		maxScore += MaxLevelScore(n)
	}
	return games.Summary{
		Kind:      games.KindMemoryMatch,
		Level:     g.level,
		Completed: g.done,
		Score:     g.tally.Score,
		MaxScore:  maxScore,
		Correct:   g.tally.Correct,
		Incorrect: g.tally.Incorrect,
		Duration:  g.tally.Elapsed,
	}
}

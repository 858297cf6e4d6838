package play

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/games/colormatch"
	"github.com/autismart/autismart/internal/games/emotion"
	"github.com/autismart/autismart/internal/games/memorymatch"
	"github.com/autismart/autismart/internal/games/soundmatch"
)

// engine is the state machine every game implements.
type engine interface {
	Phase() games.Phase
	Level() int
	Score() int
	Timer() *games.Countdown
	HasNextLevel() bool
	Start()
	Tick(d time.Duration) (timedOut bool)
	Advance() error
	Replay() error
	Stop()
	Summary() games.Summary
}

// board adapts an engine to the play screen: what can be chosen, how a
// choice is scored and how the round is drawn.
type board interface {
	engine

	Kind() games.Kind
	// Cells is how many choices the cursor moves over.
	Cells() int
	// Columns lays cells out in a grid; 1 is a vertical list.
	Columns() int
	Choose(i int) (outcome, error)
	Progress() string
	Render(cursor, width int) string
}

// settler is implemented by boards that show a wrong pair briefly before
// hiding it again.
type settler interface {
	Settle()
}

// outcome normalizes the per-game feedback for display.
type outcome struct {
	Correct       bool
	Neutral       bool // no verdict yet, e.g. the first card of a pair
	Points        int
	LevelComplete bool
	Bonus         int
	Settle        bool
}

// Message is the one-line feedback shown under the board.
func (o outcome) Message() string {
	switch {
	case o.LevelComplete:
		return fmt.Sprintf("Level complete! +%d bonus", o.Bonus)
	case o.Neutral:
		return ""
	case o.Correct:
		return fmt.Sprintf("Great job! +%d", o.Points)
	case o.Points < 0:
		return fmt.Sprintf("Not quite. %d", o.Points)
	default:
		return "Not quite. Try the next one!"
	}
}

// newBoard returns the board for kind.
func newBoard(kind games.Kind, rng *rand.Rand) (board, error) {
	switch kind {
	case games.KindColorMatch:
		return &colorBoard{colormatch.New(rng)}, nil
	case games.KindMemoryMatch:
		return &memoryBoard{memorymatch.New(rng)}, nil
	case games.KindSoundMatch:
		return &soundBoard{soundmatch.New(rng)}, nil
	case games.KindEmotion:
		return &emotionBoard{emotion.New(rng)}, nil
	default:
		return nil, fmt.Errorf("unknown game %q", kind)
	}
}

// Package games holds the pieces shared by the therapy mini-games: the
// round phase, a countdown, a score tally and conversion to activity records.
package games

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrNotPlaying       = errors.New("game is not in progress")
	ErrInvalidChoice    = errors.New("choice out of range")
	ErrLevelNotComplete = errors.New("level is not complete")
	ErrNoMoreLevels     = errors.New("no more levels")
)

// Kind identifies a game.
type Kind string

const (
	KindColorMatch  Kind = "color-match"
	KindMemoryMatch Kind = "memory-match"
	KindSoundMatch  Kind = "sound-match"
	KindEmotion     Kind = "emotion"
)

// AllKinds returns every game in menu order.
func AllKinds() []Kind {
	return []Kind{KindColorMatch, KindMemoryMatch, KindSoundMatch, KindEmotion}
}

// ParseKind resolves a game name as typed on the command line.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// DisplayName returns the title shown for a game.
func (k Kind) DisplayName() string {
	switch k {
	case KindColorMatch:
		return "Color Matching"
	case KindMemoryMatch:
		return "Memory Match"
	case KindSoundMatch:
		return "Sound Matching"
	case KindEmotion:
		return "Emotion Recognition"
	default:
		return string(k)
	}
}

// Description is a one-line explanation for the game menu.
func (k Kind) Description() string {
	switch k {
	case KindColorMatch:
		return "Find the swatch that matches the target color"
	case KindMemoryMatch:
		return "Flip cards and find the matching pairs"
	case KindSoundMatch:
		return "Match the sound to what makes it"
	case KindEmotion:
		return "Name the feeling on the face"
	default:
		return ""
	}
}

// Phase is where a game is within its current level.
type Phase int

const (
	PhaseIdle          Phase = iota // Waiting for the level to start
	PhasePlaying                    // Prompting and accepting answers
	PhaseLevelComplete              // All rounds done; Advance or Replay
	PhaseFailed                     // Countdown ran out; Replay restarts the level
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhaseLevelComplete:
		return "level-complete"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Floor subtracts penalty from score without going below zero.
func Floor(score, penalty int) int {
	return max(0, score-penalty)
}

// Choices draws k distinct indices from [0, pool) in random order and picks
// one of them as the target.
func Choices(rng *rand.Rand, pool, k int) (target int, options []int) {
	k = min(k, pool)
	options = rng.Perm(pool)[:k]
	return options[rng.IntN(k)], options
}

// NewRand returns a generator seeded from seed. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

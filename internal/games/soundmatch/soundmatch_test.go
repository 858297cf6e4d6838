package soundmatch

import (
	"errors"
	"testing"
	"time"

	"github.com/autismart/autismart/internal/games"
)

func testGame() *Game {
	g := New(games.NewRand(3))
	g.Start()
	return g
}

func wrong(g *Game) int {
	return (g.Current().Correct() + 1) % OptionCount
}

func TestRound_OptionsContainSound(t *testing.T) {
	g := testGame()
	r := g.Current()
	if len(r.Options) != OptionCount {
		t.Fatalf("len(Options) = %d", len(r.Options))
	}
	if r.Options[r.Correct()] != r.Sound {
		t.Errorf("correct option %v != sound %v", r.Options[r.Correct()], r.Sound)
	}
	seen := map[string]bool{}
	for _, o := range r.Options {
		if seen[o.Source] {
			t.Errorf("duplicate option %s", o.Source)
		}
		seen[o.Source] = true
	}
}

func TestAnswer_WrongAdvancesWithPenalty(t *testing.T) {
	g := testGame()
	_, _ = g.Answer(g.Current().Correct())
	fb, _ := g.Answer(wrong(g))

	if fb.Correct || fb.Points != -WrongPenalty {
		t.Errorf("feedback = %+v", fb)
	}
	if g.Score() != 40 || g.Round() != 2 {
		t.Errorf("score %d round %d, want 40 and 2", g.Score(), g.Round())
	}
}

func TestAnswer_PenaltyFloored(t *testing.T) {
	g := testGame()
	_, _ = g.Answer(wrong(g))
	if g.Score() != 0 {
		t.Errorf("Score() = %d, want 0", g.Score())
	}
}

func TestLevelComplete_AccuracyBonus(t *testing.T) {
	tests := []struct {
		name   string
		misses int
		want   Bonus
	}{
		{"perfect", 0, Bonus{Accuracy: AccuracyBonus, Level: 25}},
		{"one miss of six", 1, Bonus{Accuracy: AccuracyBonus, Level: 25}},
		{"two misses of six", 2, Bonus{Level: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame()
			var fb Feedback
			for i := 0; i < RoundsForLevel(1); i++ {
				if i < tt.misses {
					fb, _ = g.Answer(wrong(g))
				} else {
					fb, _ = g.Answer(g.Current().Correct())
				}
			}
			if !fb.LevelComplete {
				t.Fatal("expected level complete")
			}
			if fb.Bonus != tt.want {
				t.Errorf("Bonus = %+v, want %+v", fb.Bonus, tt.want)
			}
		})
	}
}

func TestTick_Timeout(t *testing.T) {
	g := testGame()
	_, _ = g.Answer(g.Current().Correct())
	if !g.Tick(LevelTime + time.Second) {
		t.Fatal("expected timeout")
	}
	if g.Phase() != games.PhaseFailed || g.Score() != 0 {
		t.Errorf("phase %s score %d", g.Phase(), g.Score())
	}
	if err := g.Advance(); !errors.Is(err, games.ErrLevelNotComplete) {
		t.Errorf("Advance after failure: %v", err)
	}
}

func TestSummary_Activity(t *testing.T) {
	g := testGame()
	for i := 0; i < RoundsForLevel(1); i++ {
		_, _ = g.Answer(g.Current().Correct())
	}
	g.Tick(time.Second) // ignored after completion

	rec := g.Summary().Activity("child-1")
	if rec.Name != "Sound Matching" || rec.Score != MaxLevelScore(1) || rec.Percentage != 100 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Duration != 0 {
		t.Errorf("Duration = %v, want 0", rec.Duration)
	}
}

package colormatch

import (
	"errors"
	"testing"
	"time"

	"github.com/autismart/autismart/internal/games"
)

func testGame() *Game {
	g := New(games.NewRand(42))
	g.Start()
	return g
}

func wrong(g *Game) int {
	return (g.Current().Correct() + 1) % len(g.Current().Swatches)
}

func TestStart_FirstRound(t *testing.T) {
	g := testGame()

	if g.Phase() != games.PhasePlaying {
		t.Fatalf("Phase() = %s, want playing", g.Phase())
	}
	r := g.Current()
	if len(r.Swatches) != SwatchCount {
		t.Errorf("len(Swatches) = %d, want %d", len(r.Swatches), SwatchCount)
	}
	if r.Swatches[r.Correct()] != r.Target {
		t.Errorf("correct swatch %v != target %v", r.Swatches[r.Correct()], r.Target)
	}
	if g.Timer().Remaining() != LevelTime {
		t.Errorf("timer = %v, want %v", g.Timer().Remaining(), LevelTime)
	}
}

func TestAnswer_CorrectAwards100(t *testing.T) {
	g := testGame()
	fb, err := g.Answer(g.Current().Correct())
	if err != nil {
		t.Fatal(err)
	}
	if !fb.Correct || fb.Points != CorrectPoints || g.Score() != 100 {
		t.Errorf("feedback = %+v, score = %d", fb, g.Score())
	}
	if g.Round() != 1 {
		t.Errorf("Round() = %d, want 1", g.Round())
	}
}

func TestAnswer_PenaltyFlooredAtZero(t *testing.T) {
	g := testGame()

	fb, _ := g.Answer(wrong(g))
	if fb.Correct || g.Score() != 0 || fb.Points != 0 {
		t.Errorf("wrong at 0: feedback = %+v, score = %d, want 0", fb, g.Score())
	}

	_, _ = g.Answer(g.Current().Correct())
	fb, _ = g.Answer(wrong(g))
	if g.Score() != 80 || fb.Points != -20 {
		t.Errorf("score = %d (points %d), want 80 (-20)", g.Score(), fb.Points)
	}
	if g.Round() != 1 {
		t.Errorf("wrong answer advanced round: %d", g.Round())
	}
}

func TestAnswer_InvalidChoice(t *testing.T) {
	g := testGame()
	if _, err := g.Answer(SwatchCount); !errors.Is(err, games.ErrInvalidChoice) {
		t.Errorf("err = %v, want ErrInvalidChoice", err)
	}
}

func TestAnswer_NotPlaying(t *testing.T) {
	g := New(games.NewRand(1))
	if _, err := g.Answer(0); !errors.Is(err, games.ErrNotPlaying) {
		t.Errorf("err = %v, want ErrNotPlaying", err)
	}
}

func TestLevelComplete_PerfectBonuses(t *testing.T) {
	g := testGame()
	g.Tick(10 * time.Second)

	var fb Feedback
	for i := 0; i < RoundsForLevel(1); i++ {
		fb, _ = g.Answer(g.Current().Correct())
	}

	if !fb.LevelComplete {
		t.Fatal("expected level complete")
	}
	want := Bonus{Time: 20 * TimeBonusPerSecond, Perfect: PerfectBonus, Level: LevelBonusPerLevel}
	if fb.Bonus != want {
		t.Errorf("Bonus = %+v, want %+v", fb.Bonus, want)
	}
	if g.Score() != 5*100+want.Total() {
		t.Errorf("Score() = %d, want %d", g.Score(), 5*100+want.Total())
	}
	if g.Phase() != games.PhaseLevelComplete {
		t.Errorf("Phase() = %s", g.Phase())
	}
	if g.Timer().Running() {
		t.Error("timer still running after level complete")
	}
}

func TestLevelComplete_NoPerfectBonusAfterMistake(t *testing.T) {
	g := testGame()
	_, _ = g.Answer(wrong(g))
	var fb Feedback
	for i := 0; i < RoundsForLevel(1); i++ {
		fb, _ = g.Answer(g.Current().Correct())
	}
	if fb.Bonus.Perfect != 0 {
		t.Errorf("Perfect = %d, want 0", fb.Bonus.Perfect)
	}
}

func TestTick_TimeoutFailsAndDiscardsLevel(t *testing.T) {
	g := testGame()
	_, _ = g.Answer(g.Current().Correct())
	_, _ = g.Answer(g.Current().Correct())

	if g.Tick(LevelTime - time.Second) {
		t.Fatal("timed out early")
	}
	if !g.Tick(time.Second) {
		t.Fatal("expected timeout")
	}
	if g.Phase() != games.PhaseFailed {
		t.Errorf("Phase() = %s, want failed", g.Phase())
	}
	if g.Score() != 0 {
		t.Errorf("Score() = %d, want 0 (no partial credit)", g.Score())
	}
	if g.Round() != 0 {
		t.Errorf("Round() = %d, want 0", g.Round())
	}
	if s := g.Summary(); s.Correct != 0 || s.Incorrect != 0 {
		t.Errorf("Summary() counts = %d/%d, want 0/0 for a failed level", s.Correct, s.Incorrect)
	}

	// Later ticks are ignored.
	if g.Tick(time.Second) {
		t.Error("tick after failure reported timeout")
	}
	if _, err := g.Answer(0); !errors.Is(err, games.ErrNotPlaying) {
		t.Errorf("Answer after failure: %v", err)
	}

	if err := g.Replay(); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if g.Phase() != games.PhasePlaying || g.Timer().Remaining() != LevelTime {
		t.Errorf("after replay: phase %s, timer %v", g.Phase(), g.Timer().Remaining())
	}
}

func TestAdvanceAndReplay(t *testing.T) {
	g := testGame()
	if err := g.Advance(); !errors.Is(err, games.ErrLevelNotComplete) {
		t.Errorf("Advance mid-level: %v", err)
	}
	for i := 0; i < RoundsForLevel(1); i++ {
		_, _ = g.Answer(g.Current().Correct())
	}
	after1 := g.Score()

	if err := g.Replay(); err != nil {
		t.Fatal(err)
	}
	if g.Score() != 0 || g.Level() != 1 {
		t.Errorf("after replay: score %d level %d", g.Score(), g.Level())
	}

	for i := 0; i < RoundsForLevel(1); i++ {
		_, _ = g.Answer(g.Current().Correct())
	}
	if g.Score() != after1 {
		t.Errorf("replayed score = %d, want %d", g.Score(), after1)
	}
	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	if g.Level() != 2 || g.Rounds() != 6 || g.Score() != after1 {
		t.Errorf("level 2: level %d rounds %d score %d", g.Level(), g.Rounds(), g.Score())
	}

	s := g.Summary()
	if s.Completed != 1 || s.Correct != 10 || s.MaxScore != MaxLevelScore(1)+MaxLevelScore(2) {
		t.Errorf("Summary() = %+v", s)
	}
}

func TestAdvance_LastLevel(t *testing.T) {
	g := testGame()
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		for i := 0; i < RoundsForLevel(lvl); i++ {
			_, _ = g.Answer(g.Current().Correct())
		}
		if lvl < MaxLevel {
			if err := g.Advance(); err != nil {
				t.Fatalf("Advance from %d: %v", lvl, err)
			}
		}
	}
	if err := g.Advance(); !errors.Is(err, games.ErrNoMoreLevels) {
		t.Errorf("Advance past last level: %v", err)
	}
}

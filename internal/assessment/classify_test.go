package assessment

import (
	"errors"
	"math"
	"testing"

	"github.com/autismart/autismart/internal/catalog"
)

func TestClassifySupportLevel_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		questions int
		want      SupportLevel
	}{
		{"all ones", 50, 50, SupportBeginner},
		{"exactly 40", 6, 5, SupportBeginner},
		{"just above 40", 31, 25, SupportIntermediate},
		{"exactly 60", 9, 5, SupportIntermediate},
		{"just above 60", 46, 25, SupportAdvanced},
		{"all threes", 150, 50, SupportAdvanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ClassifySupportLevel(tt.score, tt.questions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ClassifySupportLevel(%d, %d) = %s, want %s", tt.score, tt.questions, got, tt.want)
			}
		})
	}
}

func TestClassifySupportLevel_Monotonic(t *testing.T) {
	const n = 50
	prev := -1
	for score := n; score <= n*3; score++ {
		level, _, err := ClassifySupportLevel(score, n)
		if err != nil {
			t.Fatal(err)
		}
		if level.Severity() < prev {
			t.Fatalf("severity decreased at score %d: %s", score, level)
		}
		prev = level.Severity()
	}
}

func TestClassifySupportLevel_ZeroQuestions(t *testing.T) {
	level, pct, err := ClassifySupportLevel(0, 0)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("err = %v, want ErrDivisionByZero", err)
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct != 0 {
		t.Errorf("percentage = %v, want 0", pct)
	}
	if level != "" {
		t.Errorf("level = %q, want empty", level)
	}
}

func TestClassifyCategoryTrend(t *testing.T) {
	tests := []struct {
		name      string
		cs        CategoryScore
		wantPct   int
		improving bool
	}{
		{"all typical", CategoryScore{Score: 5, Total: 5}, 67, true},
		{"all atypical", CategoryScore{Score: 15, Total: 5}, 0, false},
		{"exactly half", CategoryScore{Score: 3, Total: 2}, 50, true},
		{"just under half", CategoryScore{Score: 14, Total: 9}, 48, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyCategoryTrend(tt.cs)
			if !ok {
				t.Fatal("expected ok")
			}
			if got.Percentage != tt.wantPct || got.IsImproving != tt.improving {
				t.Errorf("ClassifyCategoryTrend(%+v) = %+v, want {%d %v}", tt.cs, got, tt.wantPct, tt.improving)
			}
		})
	}
}

func TestClassifyCategoryTrend_SkipsEmpty(t *testing.T) {
	if _, ok := ClassifyCategoryTrend(CategoryScore{}); ok {
		t.Error("expected empty category to be skipped")
	}
}

// The category trend is inverted and the support percentage is not; the
// same numbers must produce different percentages.
func TestTrendAndSupportPercentagesDiverge(t *testing.T) {
	trend, ok := ClassifyCategoryTrend(CategoryScore{Score: 6, Total: 3})
	if !ok {
		t.Fatal("expected ok")
	}
	_, supportPct, err := ClassifySupportLevel(6, 3)
	if err != nil {
		t.Fatal(err)
	}

	if trend.Percentage != 33 {
		t.Errorf("trend percentage = %d, want 33", trend.Percentage)
	}
	if got := int(math.Round(supportPct)); got != 67 {
		t.Errorf("support percentage = %d, want 67", got)
	}
}

func TestCategoryTrends_ScenarioD(t *testing.T) {
	s := NewScorer(catalog.Default())

	answered := 0
	for _, q := range s.Catalog().Questions() {
		if q.Category != catalog.CategoryCommunication || answered == 5 {
			continue
		}
		idx := 2
		if q.Inverted {
			idx = 0
		}
		if _, err := s.RecordAnswer(q.ID, idx); err != nil {
			t.Fatal(err)
		}
		answered++
	}

	res := s.ComputeScore()
	cs := res.CategoryScores[catalog.CategoryCommunication]
	if cs.Score != 15 || cs.Total != 5 {
		t.Fatalf("communication = %+v, want {15 5}", cs)
	}

	trends := CategoryTrends(res)
	if len(trends) != 1 {
		t.Fatalf("got %d trends, want 1 (unanswered categories skipped)", len(trends))
	}
	if trends[0].Category != catalog.CategoryCommunication {
		t.Errorf("trend category = %s", trends[0].Category)
	}
	if trends[0].Percentage != 0 || trends[0].IsImproving {
		t.Errorf("trend = %+v, want 0%% not improving", trends[0].Trend)
	}
}

func TestSupportLevel_Display(t *testing.T) {
	if SupportIntermediate.DisplayName() != "Intermediate" {
		t.Errorf("DisplayName = %q", SupportIntermediate.DisplayName())
	}
	if SupportAdvanced.Description() != "High support needs" {
		t.Errorf("Description = %q", SupportAdvanced.Description())
	}
}

package assessment

import (
	"math"

	"github.com/autismart/autismart/internal/catalog"
)

// Disclaimer must accompany every displayed or exported result.
const Disclaimer = "This is a behavioral observation tool, not a medical diagnosis."

// Support level thresholds, as inclusive upper bounds on the percentage.
const (
	beginnerMaxPercent     = 40
	intermediateMaxPercent = 60
)

// improvingMinPercent is the lowest trend percentage reported as improving.
const improvingMinPercent = 50

// SupportLevel is the coarse support-needs classification.
type SupportLevel string

const (
	SupportBeginner     SupportLevel = "beginner"
	SupportIntermediate SupportLevel = "intermediate"
	SupportAdvanced     SupportLevel = "advanced"
)

// DisplayName returns the tier name shown to caregivers.
func (l SupportLevel) DisplayName() string {
	switch l {
	case SupportBeginner:
		return "Beginner"
	case SupportIntermediate:
		return "Intermediate"
	case SupportAdvanced:
		return "Advanced"
	default:
		return string(l)
	}
}

// Description explains the tier in terms of support needs.
func (l SupportLevel) Description() string {
	switch l {
	case SupportBeginner:
		return "Low support needs"
	case SupportIntermediate:
		return "Moderate support needs"
	case SupportAdvanced:
		return "High support needs"
	default:
		return ""
	}
}

// Severity orders levels from 0 (beginner) upwards.
func (l SupportLevel) Severity() int {
	switch l {
	case SupportBeginner:
		return 0
	case SupportIntermediate:
		return 1
	case SupportAdvanced:
		return 2
	default:
		return -1
	}
}

// ClassifySupportLevel maps an overall score to a support level.
// The percentage is totalScore / (totalQuestions * 3) * 100; boundaries
// at 40 and 60 belong to the lower tier.
func ClassifySupportLevel(totalScore, totalQuestions int) (SupportLevel, float64, error) {
	if totalQuestions <= 0 {
		return "", 0, ErrDivisionByZero
	}

	maxScore := totalQuestions * catalog.MaxOptionScore
	pct := float64(totalScore*100) / float64(maxScore)

	// Compare on integers so the boundaries are exact.
	switch {
	case totalScore*100 <= beginnerMaxPercent*maxScore:
		return SupportBeginner, pct, nil
	case totalScore*100 <= intermediateMaxPercent*maxScore:
		return SupportIntermediate, pct, nil
	default:
		return SupportAdvanced, pct, nil
	}
}

// Trend is the per-category improvement signal.
type Trend struct {
	Percentage  int  `json:"percentage"`
	IsImproving bool `json:"is_improving"`
}

// CategoryTrend is a Trend labelled with its category.
type CategoryTrend struct {
	Category catalog.Category `json:"category"`
	Trend
}

// ClassifyCategoryTrend returns the inverted category percentage:
// round((total*3 - score) / (total*3) * 100). Fewer atypical points give a
// higher percentage. ok is false for categories with no answers.
func ClassifyCategoryTrend(cs CategoryScore) (t Trend, ok bool) {
	if cs.Total <= 0 {
		return Trend{}, false
	}
	maxScore := cs.Total * catalog.MaxOptionScore
	pct := int(math.Round(float64((maxScore-cs.Score)*100) / float64(maxScore)))
	return Trend{
		Percentage:  pct,
		IsImproving: pct >= improvingMinPercent,
	}, true
}

// CategoryTrends returns trends for every answered category in display order.
func CategoryTrends(res ScoreResult) []CategoryTrend {
	var out []CategoryTrend
	for _, c := range catalog.AllCategories() {
		t, ok := ClassifyCategoryTrend(res.CategoryScores[c])
		if !ok {
			continue
		}
		out = append(out, CategoryTrend{Category: c, Trend: t})
	}
	return out
}

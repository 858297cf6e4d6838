package assessment

import (
	"math"
	"time"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/catalog"
)

// ActivityName is the default name recorded for a questionnaire.
const ActivityName = "Behavioral Assessment"

// Report is the classified outcome of a complete assessment.
type Report struct {
	Result     ScoreResult     `json:"result"`
	Percentage float64         `json:"percentage"`
	Level      SupportLevel    `json:"support_level"`
	Trends     []CategoryTrend `json:"trends"`
	Disclaimer string          `json:"disclaimer"`
}

// RoundedPercentage returns the support percentage rounded for display.
func (r *Report) RoundedPercentage() int {
	return int(math.Round(r.Percentage))
}

// MaxScore is the highest total the answered questions could reach.
func (r *Report) MaxScore() int {
	return r.Result.TotalQuestions * catalog.MaxOptionScore
}

// Trend returns the trend for category c, if it was answered.
func (r *Report) Trend(c catalog.Category) (CategoryTrend, bool) {
	for _, t := range r.Trends {
		if t.Category == c {
			return t, true
		}
	}
	return CategoryTrend{}, false
}

// Activity converts the report into an activity record for childID.
func (r *Report) Activity(childID string, duration time.Duration) activity.Record {
	categories := make(map[string]any, len(r.Result.CategoryScores))
	for _, c := range catalog.AllCategories() {
		cs := r.Result.CategoryScores[c]
		entry := map[string]any{
			"score": cs.Score,
			"total": cs.Total,
		}
		if t, ok := r.Trend(c); ok {
			entry["trend_percentage"] = t.Percentage
			entry["improving"] = t.IsImproving
		}
		categories[string(c)] = entry
	}

	return activity.Record{
		ChildID:          childID,
		Type:             activity.TypeAssessment,
		Name:             ActivityName,
		Score:            r.Result.TotalScore,
		MaxScore:         r.MaxScore(),
		Percentage:       r.Percentage,
		Duration:         duration,
		CorrectAnswers:   r.Result.TotalQuestions,
		IncorrectAnswers: 0,
		Details: map[string]any{
			"support_level": string(r.Level),
			"categories":    categories,
			"disclaimer":    r.Disclaimer,
		},
	}
}

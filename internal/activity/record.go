package activity

import "time"

// Type distinguishes what produced an activity record.
type Type string

const (
	TypeAssessment Type = "assessment"
	TypeGame       Type = "game"
)

// Record is a finished assessment or game stored against a child.
type Record struct {
	ID               int64          `json:"id,omitempty" yaml:"id,omitempty"`
	ChildID          string         `json:"child_id" yaml:"child_id"`
	Type             Type           `json:"activity_type" yaml:"activity_type"`
	Name             string         `json:"activity_name" yaml:"activity_name"`
	Score            int            `json:"score" yaml:"score"`
	MaxScore         int            `json:"max_score" yaml:"max_score"`
	Percentage       float64        `json:"percentage" yaml:"percentage"`
	Duration         time.Duration  `json:"duration" yaml:"duration"`
	CorrectAnswers   int            `json:"correct_answers" yaml:"correct_answers"`
	IncorrectAnswers int            `json:"incorrect_answers" yaml:"incorrect_answers"`
	Details          map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RecordedAt       time.Time      `json:"recorded_at" yaml:"recorded_at"`
}

// Percent returns score as a percentage of maxScore, or 0 when maxScore
// is not positive.
func Percent(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) * 100 / float64(maxScore)
}

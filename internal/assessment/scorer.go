package assessment

import (
	"maps"

	"github.com/autismart/autismart/internal/catalog"
)

// Answer is a recorded selection for one question.
type Answer struct {
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
	Score       int    `json:"score"`
}

// CategoryScore aggregates answered questions of one category.
type CategoryScore struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// ScoreResult is the derived score over the current answers.
type ScoreResult struct {
	TotalScore     int                                `json:"total_score"`
	TotalQuestions int                                `json:"total_questions"`
	CategoryScores map[catalog.Category]CategoryScore `json:"category_scores"`
}

// Scorer holds the answers of one in-progress assessment against a catalog.
// It is not safe for concurrent use.
type Scorer struct {
	catalog *catalog.Catalog
	answers map[string]Answer
}

// NewScorer creates a Scorer with no answers.
func NewScorer(c *catalog.Catalog) *Scorer {
	return &Scorer{
		catalog: c,
		answers: make(map[string]Answer),
	}
}

// Catalog returns the catalog the scorer validates against.
func (s *Scorer) Catalog() *catalog.Catalog {
	return s.catalog
}

// RecordAnswer sets or overwrites the answer for questionID. Unknown
// questions and out-of-range options are rejected without changing state.
func (s *Scorer) RecordAnswer(questionID string, optionIndex int) (Answer, error) {
	q, ok := s.catalog.Question(questionID)
	if !ok {
		return Answer{}, &InvalidAnswerError{
			QuestionID:  questionID,
			OptionIndex: optionIndex,
			Reason:      "question not in catalog",
		}
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) || optionIndex >= len(q.Scores) {
		return Answer{}, &InvalidAnswerError{
			QuestionID:  questionID,
			OptionIndex: optionIndex,
			Reason:      "option index out of range",
		}
	}

	a := Answer{
		QuestionID:  questionID,
		OptionIndex: optionIndex,
		Score:       q.Scores[optionIndex],
	}
	s.answers[questionID] = a
	return a, nil
}

// ClearAnswer removes the answer for questionID, if any.
func (s *Scorer) ClearAnswer(questionID string) {
	delete(s.answers, questionID)
}

// Answer returns the recorded answer for questionID.
func (s *Scorer) Answer(questionID string) (Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Answers returns recorded answers in catalog order.
func (s *Scorer) Answers() []Answer {
	out := make([]Answer, 0, len(s.answers))
	for _, q := range s.catalog.Questions() {
		if a, ok := s.answers[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Answered returns the number of distinct answered questions.
func (s *Scorer) Answered() int {
	return len(s.answers)
}

// Remaining returns how many catalog questions still need an answer.
func (s *Scorer) Remaining() int {
	return s.catalog.Total() - len(s.answers)
}

// Reset clears every answer.
func (s *Scorer) Reset() {
	clear(s.answers)
}

// ComputeScore sums answered questions in catalog declaration order.
// Every category is present in the result, at zero when unanswered.
func (s *Scorer) ComputeScore() ScoreResult {
	res := ScoreResult{
		CategoryScores: make(map[catalog.Category]CategoryScore, len(catalog.AllCategories())),
	}
	for _, c := range catalog.AllCategories() {
		res.CategoryScores[c] = CategoryScore{}
	}

	for _, level := range s.catalog.Levels {
		for _, q := range level.Questions {
			a, ok := s.answers[q.ID]
			if !ok {
				continue
			}
			res.TotalScore += a.Score
			res.TotalQuestions++

			cs := res.CategoryScores[q.Category]
			cs.Score += a.Score
			cs.Total++
			res.CategoryScores[q.Category] = cs
		}
	}
	return res
}

// Evaluate classifies the current answers. It refuses to classify until
// every catalog question is answered.
func (s *Scorer) Evaluate() (*Report, error) {
	total := s.catalog.Total()
	if answered := s.Answered(); answered < total || total == 0 {
		return nil, &IncompleteAssessmentError{
			Answered:  answered,
			Total:     total,
			Remaining: total - answered,
		}
	}

	res := s.ComputeScore()
	level, pct, err := ClassifySupportLevel(res.TotalScore, res.TotalQuestions)
	if err != nil {
		return nil, err
	}

	return &Report{
		Result:     res,
		Percentage: pct,
		Level:      level,
		Trends:     CategoryTrends(res),
		Disclaimer: Disclaimer,
	}, nil
}

// clone returns a copy of the result that shares no map with r.
func (r ScoreResult) clone() ScoreResult {
	r.CategoryScores = maps.Clone(r.CategoryScores)
	return r
}

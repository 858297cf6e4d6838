package assessment

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned when a support level is requested for zero
// answered questions.
var ErrDivisionByZero = errors.New("cannot classify support level: no answered questions")

// ErrAlreadySubmitted is returned when a submitted session is modified.
var ErrAlreadySubmitted = errors.New("assessment already submitted")

// InvalidAnswerError reports an answer that does not fit the catalog.
type InvalidAnswerError struct {
	QuestionID  string
	OptionIndex int
	Reason      string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for question %q (option %d): %s", e.QuestionID, e.OptionIndex, e.Reason)
}

// IncompleteAssessmentError reports that not every catalog question has
// been answered. The caller should show Remaining and let the user continue.
type IncompleteAssessmentError struct {
	Answered  int
	Total     int
	Remaining int
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("assessment incomplete: %d of %d questions answered, %d remaining", e.Answered, e.Total, e.Remaining)
}

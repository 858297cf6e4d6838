package catalog

import (
	"fmt"
	"strings"
)

// Validate checks structural invariants of a catalog and reports every
// problem found.
func Validate(c *Catalog) error {
	var errs []string

	if len(c.Levels) == 0 {
		errs = append(errs, "catalog has no levels")
	}

	seenLevels := make(map[LevelKey]bool)
	seenIDs := make(map[string]bool)

	for _, l := range c.Levels {
		if l.Key == "" {
			errs = append(errs, "level with empty key")
		}
		if seenLevels[l.Key] {
			errs = append(errs, fmt.Sprintf("duplicate level key: %q", l.Key))
		}
		seenLevels[l.Key] = true

		if want, ok := expectedQuestions[l.Key]; ok && len(l.Questions) != want {
			errs = append(errs, fmt.Sprintf("level %q has %d questions, expected %d", l.Key, len(l.Questions), want))
		}

		for _, q := range l.Questions {
			errs = append(errs, validateQuestion(q, seenIDs)...)
			seenIDs[q.ID] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateQuestion(q Question, seen map[string]bool) []string {
	var errs []string
	if q.ID == "" {
		errs = append(errs, "question with empty ID")
	}
	if seen[q.ID] {
		errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
	}
	if !q.Category.Valid() {
		errs = append(errs, fmt.Sprintf("question %q has unknown category %q", q.ID, q.Category))
	}
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, fmt.Sprintf("question %q has empty text", q.ID))
	}
	if len(q.Options) != len(q.Scores) {
		errs = append(errs, fmt.Sprintf("question %q has %d options but %d scores", q.ID, len(q.Options), len(q.Scores)))
	}
	if len(q.Options) != 3 {
		errs = append(errs, fmt.Sprintf("question %q has %d options, expected 3", q.ID, len(q.Options)))
	}
	for i, s := range q.Scores {
		if s < 1 || s > MaxOptionScore {
			errs = append(errs, fmt.Sprintf("question %q score[%d] = %d out of range [1,%d]", q.ID, i, s, MaxOptionScore))
		}
	}
	return errs
}

package catalog

import (
	"fmt"
	"slices"
)

// MaxOptionScore is the highest score a single answer can carry.
const MaxOptionScore = 3

// LevelKey identifies a questionnaire level.
type LevelKey string

const (
	LevelEasy         LevelKey = "easy"
	LevelIntermediate LevelKey = "intermediate"
	LevelAdvanced     LevelKey = "advanced"
	LevelSensory      LevelKey = "sensory"
)

// AllLevelKeys returns the standard level keys in display order.
func AllLevelKeys() []LevelKey {
	return []LevelKey{LevelEasy, LevelIntermediate, LevelAdvanced, LevelSensory}
}

// expectedQuestions is the question count each standard level must carry.
var expectedQuestions = map[LevelKey]int{
	LevelEasy:         15,
	LevelIntermediate: 15,
	LevelAdvanced:     15,
	LevelSensory:      5,
}

// Question is a single multiple-choice observation item.
type Question struct {
	ID       string   `yaml:"id" json:"id"`
	Category Category `yaml:"category" json:"category"`
	Text     string   `yaml:"text" json:"text"`
	Options  []string `yaml:"options" json:"options"`

	// Scores has one entry per option. Lower means more typical.
	Scores []int `yaml:"scores" json:"scores"`

	// Inverted marks items authored with reversed score order,
	// e.g. tolerance questions. Informational only.
	Inverted bool `yaml:"inverted,omitempty" json:"inverted,omitempty"`
}

// MaxScore returns the highest score among the question's options.
func (q Question) MaxScore() int {
	if len(q.Scores) == 0 {
		return 0
	}
	return slices.Max(q.Scores)
}

// Level groups questions under a difficulty or topic.
type Level struct {
	Key         LevelKey   `yaml:"key" json:"key"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

// Catalog is an immutable set of levels. Build one with Parse or Default.
type Catalog struct {
	Version int     `yaml:"version" json:"version"`
	Levels  []Level `yaml:"levels" json:"levels"`

	byID    map[string]*Question
	byLevel map[LevelKey]int
}

// index builds lookup tables. Called once after decoding.
func (c *Catalog) index() {
	c.byID = make(map[string]*Question)
	c.byLevel = make(map[LevelKey]int, len(c.Levels))
	for li := range c.Levels {
		c.byLevel[c.Levels[li].Key] = li
		for qi := range c.Levels[li].Questions {
			q := &c.Levels[li].Questions[qi]
			c.byID[q.ID] = q
		}
	}
}

// Question returns the question with the given ID.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// Level returns the level with the given key.
func (c *Catalog) Level(key LevelKey) (Level, error) {
	i, ok := c.byLevel[key]
	if !ok {
		return Level{}, fmt.Errorf("level not found: %q", key)
	}
	return c.Levels[i], nil
}

// LevelOf returns the key of the level containing question id.
func (c *Catalog) LevelOf(id string) (LevelKey, bool) {
	for _, l := range c.Levels {
		for _, q := range l.Questions {
			if q.ID == id {
				return l.Key, true
			}
		}
	}
	return "", false
}

// Questions returns every question in declaration order.
func (c *Catalog) Questions() []Question {
	var out []Question
	for _, l := range c.Levels {
		out = append(out, l.Questions...)
	}
	return out
}

// Total returns the number of questions across all levels.
func (c *Catalog) Total() int {
	n := 0
	for _, l := range c.Levels {
		n += len(l.Questions)
	}
	return n
}

// CountByCategory returns how many questions are tagged with each category.
// Every known category is present, even at zero.
func (c *Catalog) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(AllCategories()))
	for _, cat := range AllCategories() {
		counts[cat] = 0
	}
	for _, l := range c.Levels {
		for _, q := range l.Questions {
			counts[q.Category]++
		}
	}
	return counts
}

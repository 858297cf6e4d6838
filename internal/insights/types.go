// Package insights turns a completed assessment report into caregiver
// guidance, generated by an LLM or derived offline from category trends.
package insights

import "time"

// Insight is caregiver guidance for one assessment report.
type Insight struct {
	Summary     string    `json:"summary"`
	Strengths   []string  `json:"strengths"`
	FocusAreas  []string  `json:"focus_areas"`
	Activities  []string  `json:"activities"`
	Disclaimer  string    `json:"disclaimer"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Insight sources.
const (
	SourceLLM     = "llm"
	SourceOffline = "offline"
)

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns generation defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0.3}
}

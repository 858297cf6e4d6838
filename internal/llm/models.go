package llm

import "strings"

// modelAliases maps the short names accepted in config to model IDs.
// Anything not listed is sent as-is.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	ProviderOpenAI: {
		"gpt-mini": "gpt-4o-mini",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a request.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// modelCosts is keyed by model family. Dated snapshots and OpenRouter
// vendor prefixes resolve to the longest matching family.
var modelCosts = map[string]ModelCost{
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-7-sonnet": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4":     {15, 75},
	"claude-opus-4-5":   {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}

// LookupCost returns pricing for a model ID, or nil when unknown.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	if _, after, ok := strings.Cut(id, "/"); ok {
		id = after
	}
	best := ""
	for family := range modelCosts {
		if (id == family || strings.HasPrefix(id, family+"-")) && len(family) > len(best) {
			best = family
		}
	}
	if best == "" {
		return nil
	}
	c := modelCosts[best]
	return &c
}

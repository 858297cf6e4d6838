package insights

import "github.com/autismart/autismart/internal/llm"

// InsightSchema is the structured output requested from the provider.
var InsightSchema = &llm.Schema{
	Name:        "caregiver-insight",
	Description: "Supportive guidance for a caregiver based on a behavioral screening result",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Two or three plain sentences describing the overall result",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Areas where the child is doing well",
			},
			"focus_areas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Areas that may benefit from extra support",
			},
			"activities": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concrete at-home activities, one sentence each",
			},
		},
		"required":             []any{"summary", "strengths", "focus_areas", "activities"},
		"additionalProperties": false,
	},
}

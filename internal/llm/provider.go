// Package llm talks to hosted language models on behalf of the insight
// service. Every provider returns JSON checked against the caller's schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured completion per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the resolved model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn prompt. Guidance requests never carry history.
type Request struct {
	System string
	Prompt string

	// Schema, when set, switches the provider to its native JSON mode and
	// the reply is validated before it is returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema names a JSON Schema document.
type Schema struct {
	// Name is kebab-case; it doubles as the OpenAI schema name and the
	// compile cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Finish says why the model stopped.
type Finish string

const (
	FinishEnd       Finish = "end"
	FinishMaxTokens Finish = "max_tokens"
)

// Response is a completed generation.
type Response struct {
	// Content is the validated JSON document when a Schema was requested,
	// the raw model text otherwise.
	Content json.RawMessage
	Usage   Usage
	Model   string
	Finish  Finish
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

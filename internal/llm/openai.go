package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
// OpenRouter is served by the same client with a different base URL.
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	return newChatProvider(ProviderOpenAI, cfg, "")
}

func NewOpenRouterProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	return newChatProvider(ProviderOpenRouter, cfg, openRouterBaseURL)
}

func newChatProvider(name string, cfg ProviderConfig, defaultBaseURL string) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		oc.BaseURL = cfg.BaseURL
	case defaultBaseURL != "":
		oc.BaseURL = defaultBaseURL
	}
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(oc),
		model:  resolveModel(name, cfg.Model),
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: req.System,
		})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: req.Prompt,
	})
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %q: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(p.name, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, statusError(p.name, reqErr.HTTPStatusCode, err)
		}
		return nil, &Error{Kind: KindUnavailable, Provider: p.name, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalidOutput, Provider: p.name, Err: errors.New("reply has no choices")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &Error{Kind: KindTruncated, Provider: p.name, Content: []byte(choice.Message.Content),
			Err: fmt.Errorf("stopped after %d output tokens", resp.Usage.CompletionTokens)}
	}
	content, err := checkOutput(p.name, req.Schema, choice.Message.Content)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: content,
		Usage:   Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
		Model:   resp.Model,
		Finish:  FinishEnd,
	}, nil
}

func (p *OpenAIProvider) ModelID() string { return p.model }

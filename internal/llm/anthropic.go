package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

func NewAnthropicProvider(cfg ProviderConfig, opts ...option.RequestOption) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  resolveModel(ProviderAnthropic, cfg.Model),
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderAnthropic, apiErr.StatusCode, err)
		}
		return nil, &Error{Kind: KindUnavailable, Provider: ProviderAnthropic, Err: err}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &Error{Kind: KindInvalidOutput, Provider: ProviderAnthropic, Err: errors.New("reply has no text")}
	}
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return nil, &Error{Kind: KindTruncated, Provider: ProviderAnthropic, Content: []byte(text.String()),
			Err: fmt.Errorf("stopped after %d output tokens", msg.Usage.OutputTokens)}
	}

	content, err := checkOutput(ProviderAnthropic, req.Schema, text.String())
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: content,
		Usage:   Usage{InputTokens: int(msg.Usage.InputTokens), OutputTokens: int(msg.Usage.OutputTokens)},
		Model:   string(msg.Model),
		Finish:  FinishEnd,
	}, nil
}

func (p *AnthropicProvider) ModelID() string { return p.model }

package provider

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/zen-systems/agentgate/pkg/chat"
)

// AnthropicProvider implements the Provider interface for Claude
// models.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Models returns the list of supported Claude models.
func (p *AnthropicProvider) Models() []string {
	return []string{
		"claude-sonnet-4-20250514",
		"claude-opus-4-20250514",
	}
}

// Supports reports whether the model id belongs to the Claude family.
func (p *AnthropicProvider) Supports(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

// Complete sends a buffered message request to Claude.
func (p *AnthropicProvider) Complete(ctx context.Context, req chat.Request) (*chat.Result, error) {
	resp, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	usage := chat.Usage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	return &chat.Result{Content: content, Usage: usage}, nil
}

// Stream opens a streaming message request against Claude.
func (p *AnthropicProvider) Stream(ctx context.Context, req chat.Request) (Stream, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.buildParams(req))
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream error: %w", err)
	}
	return &anthropicStream{stream: stream}, nil
}

// buildParams converts the normalized request. Claude only accepts
// temperatures in [0, 1]; the clamp happens on this call's copy and
// never reaches the caller's request.
func (p *AnthropicProvider) buildParams(req chat.Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	var messages []anthropic.MessageParam
	for _, m := range chat.WithoutSystem(req.Messages) {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == chat.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(clampTemperature(req.Temperature, 0, 1)),
		Messages:    messages,
	}
	if system := chat.SystemPrompt(req.Messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

type anthropicStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *anthropicStream) Recv() (chat.Chunk, error) {
	for s.stream.Next() {
		event := s.stream.Current()
		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				return chat.Chunk{Content: event.Delta.Text}, nil
			}
		case "message_delta":
			if event.Delta.StopReason != "" {
				return chat.Chunk{FinishReason: string(event.Delta.StopReason)}, nil
			}
		}
	}
	if err := s.stream.Err(); err != nil {
		return chat.Chunk{}, &ProviderError{Provider: "anthropic", Err: err}
	}
	return chat.Chunk{}, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

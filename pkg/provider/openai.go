package provider

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/zen-systems/agentgate/pkg/chat"
)

// OpenAIProvider implements the Provider interface for OpenAI models.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (p *OpenAIProvider) Models() []string {
	return []string{
		"gpt-5.2-instant",
		"gpt-5.2-thinking",
		"gpt-5.2-pro",
	}
}

// Supports reports whether the model id belongs to the GPT family.
func (p *OpenAIProvider) Supports(model string) bool {
	return strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o")
}

// Complete sends a buffered chat completion request to OpenAI.
func (p *OpenAIProvider) Complete(ctx context.Context, req chat.Request) (*chat.Result, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	usage := chat.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}

	return &chat.Result{Content: resp.Choices[0].Message.Content, Usage: usage}, nil
}

// Stream opens a streaming chat completion against OpenAI.
func (p *OpenAIProvider) Stream(ctx context.Context, req chat.Request) (Stream, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(req))
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai stream error: %w", err)
	}
	return &openaiStream{stream: stream}, nil
}

// buildParams converts the normalized request. OpenAI accepts
// temperatures in [0, 2]; the clamp happens on this call's copy.
func (p *OpenAIProvider) buildParams(req chat.Request) openai.ChatCompletionNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case chat.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case chat.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(req.Model),
		Messages:            messages,
		Temperature:         openai.Float(clampTemperature(req.Temperature, 0, 2)),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
}

type openaiStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openaiStream) Recv() (chat.Chunk, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			return chat.Chunk{
				Content:      choice.Delta.Content,
				FinishReason: choice.FinishReason,
			}, nil
		}
		if choice.Delta.Content != "" {
			return chat.Chunk{Content: choice.Delta.Content}, nil
		}
	}
	if err := s.stream.Err(); err != nil {
		return chat.Chunk{}, &ProviderError{Provider: "openai", Err: err}
	}
	return chat.Chunk{}, io.EOF
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}

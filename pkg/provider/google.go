package provider

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/zen-systems/agentgate/pkg/chat"
	"google.golang.org/genai"
)

// GoogleProvider implements the Provider interface for Gemini models.
type GoogleProvider struct {
	client *genai.Client
}

// NewGoogleProvider creates a new Google Gemini provider.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Models returns the list of supported Gemini models.
func (p *GoogleProvider) Models() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-2.0-pro",
	}
}

// Supports reports whether the model id belongs to the Gemini family.
func (p *GoogleProvider) Supports(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// Complete sends a buffered generation request to Gemini.
func (p *GoogleProvider) Complete(ctx context.Context, req chat.Request) (*chat.Result, error) {
	contents, cfg := p.convert(req)

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("google API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("google returned no candidates")
	}

	content := candidateText(resp)

	var usage chat.Usage
	if resp.UsageMetadata != nil {
		usage = chat.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &chat.Result{Content: content, Usage: usage}, nil
}

// Stream opens a streaming generation against Gemini. The SDK exposes
// a push iterator; iter.Pull converts it into the pull shape the
// normalizer expects, and Close releases the iterator.
func (p *GoogleProvider) Stream(ctx context.Context, req chat.Request) (Stream, error) {
	contents, cfg := p.convert(req)

	next, stop := iter.Pull2(p.client.Models.GenerateContentStream(ctx, req.Model, contents, cfg))
	return &googleStream{next: next, stop: stop}, nil
}

// convert builds Gemini content and config from the normalized
// request. Gemini accepts temperatures in [0, 2]; the clamp happens on
// this call's copy.
func (p *GoogleProvider) convert(req chat.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(clampTemperature(req.Temperature, 0, 2))),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system := chat.SystemPrompt(req.Messages); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var contents []*genai.Content
	for _, m := range chat.WithoutSystem(req.Messages) {
		role := genai.Role(genai.RoleUser)
		if m.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents, cfg
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var content string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
	}
	return content
}

type googleStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *googleStream) Recv() (chat.Chunk, error) {
	for {
		resp, err, ok := s.next()
		if !ok {
			return chat.Chunk{}, io.EOF
		}
		if err != nil {
			return chat.Chunk{}, &ProviderError{Provider: "google", Err: err}
		}
		if resp == nil {
			continue
		}

		text := candidateText(resp)
		finish := ""
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			finish = strings.ToLower(string(resp.Candidates[0].FinishReason))
		}
		if text == "" && finish == "" {
			continue
		}
		return chat.Chunk{Content: text, FinishReason: finish}, nil
	}
}

func (s *googleStream) Close() error {
	s.stop()
	return nil
}

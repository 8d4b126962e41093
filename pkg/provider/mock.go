package provider

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zen-systems/agentgate/pkg/chat"
)

// MockProvider returns deterministic responses for local runs and
// tests. Responses map the last user message to a reply; unknown
// messages get the default response. Models listed in FailModels
// always error, which is how fallback behavior is exercised.
type MockProvider struct {
	ProviderName    string
	SupportedModels []string
	Responses       map[string]string
	DefaultResponse string
	FailModels      map[string]error
	Usage           chat.Usage

	// Requests records every request received, for assertions.
	Requests []chat.Request
}

// NewMockProvider creates a mock provider serving the given models.
func NewMockProvider(name string, models ...string) *MockProvider {
	if len(models) == 0 {
		models = []string{"mock-1"}
	}
	return &MockProvider{
		ProviderName:    name,
		SupportedModels: models,
		Responses:       make(map[string]string),
		DefaultResponse: "mock response:",
		FailModels:      make(map[string]error),
	}
}

// Name returns the mock's identifier.
func (p *MockProvider) Name() string {
	return p.ProviderName
}

// Models returns the list of supported mock models.
func (p *MockProvider) Models() []string {
	return p.SupportedModels
}

// Supports reports whether the model is in the mock's list.
func (p *MockProvider) Supports(model string) bool {
	for _, m := range p.SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// Complete returns the scripted reply for the last user message.
func (p *MockProvider) Complete(_ context.Context, req chat.Request) (*chat.Result, error) {
	p.Requests = append(p.Requests, req)
	if err, ok := p.FailModels[req.Model]; ok {
		return nil, err
	}
	return &chat.Result{Content: p.reply(req), Usage: p.Usage}, nil
}

// Stream yields the scripted reply split into word-sized deltas.
func (p *MockProvider) Stream(_ context.Context, req chat.Request) (Stream, error) {
	p.Requests = append(p.Requests, req)
	if err, ok := p.FailModels[req.Model]; ok {
		return nil, err
	}
	return &mockStream{deltas: splitDeltas(p.reply(req))}, nil
}

func (p *MockProvider) reply(req chat.Request) string {
	prompt := lastUserMessage(req.Messages)
	if response, ok := p.Responses[prompt]; ok {
		return response
	}
	return fmt.Sprintf("%s %s", p.DefaultResponse, prompt)
}

func lastUserMessage(messages []chat.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// splitDeltas cuts a reply into chunks the way real providers do:
// every delta after the first carries its leading space.
func splitDeltas(content string) []string {
	words := strings.Split(content, " ")
	deltas := make([]string, 0, len(words))
	for i, w := range words {
		if i == 0 {
			deltas = append(deltas, w)
			continue
		}
		deltas = append(deltas, " "+w)
	}
	return deltas
}

type mockStream struct {
	deltas []string
	next   int
	closed bool
}

func (s *mockStream) Recv() (chat.Chunk, error) {
	if s.closed || s.next >= len(s.deltas) {
		return chat.Chunk{}, io.EOF
	}
	chunk := chat.Chunk{Content: s.deltas[s.next]}
	s.next++
	return chunk, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

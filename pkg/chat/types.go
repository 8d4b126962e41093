// Package chat defines the normalized request and response types shared
// between the HTTP surface and the provider layer.
package chat

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a normalized chat completion request. It is constructed
// fresh per call; providers operate on their own copy and never mutate
// the caller's value.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a buffered completion outcome.
type Result struct {
	Content      string `json:"content"`
	Usage        Usage  `json:"usage"`
	ModelUsed    string `json:"model_used"`
	ProviderUsed string `json:"provider_used"`
	UsedFallback bool   `json:"used_fallback"`
}

// Chunk is one normalized increment of a streamed completion. A chunk
// with a non-empty FinishReason is the terminal sentinel; no content
// follows it.
type Chunk struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// FinishStop is the finish reason synthesized when a provider stream
// ends without reporting one.
const FinishStop = "stop"

// SystemPrompt returns the content of the first system message, if any.
func SystemPrompt(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleSystem {
			return m.Content
		}
	}
	return ""
}

// WithoutSystem returns the messages with system turns removed, for
// providers that carry the system prompt out of band.
func WithoutSystem(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

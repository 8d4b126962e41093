package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/zen-systems/agentgate/pkg/chat"
	"github.com/zen-systems/agentgate/pkg/store"
)

func TestBuildSystemPrompt(t *testing.T) {
	bot := &store.Chatbot{
		ID:           "bot-1",
		Name:         "ventas",
		Personality:  "Eres un asesor de ventas amable.",
		Instructions: "Responde siempre en español.",
	}

	got := BuildSystemPrompt(bot, "hola", Options{})
	if !strings.Contains(got, bot.Personality) {
		t.Errorf("prompt missing personality: %q", got)
	}
	if !strings.Contains(got, bot.Instructions) {
		t.Errorf("prompt missing instructions: %q", got)
	}
}

func TestBuildSystemPrompt_BudgetTruncates(t *testing.T) {
	bot := &store.Chatbot{
		ID:           "bot-1",
		Name:         "ventas",
		Instructions: strings.Repeat("x", 10000),
	}

	got := BuildSystemPrompt(bot, "hola", Options{MaxContextTokens: 100})
	// 100 tokens at ~4 chars each, plus the default personality line.
	if len(got) > 600 {
		t.Errorf("prompt length = %d, want instructions truncated into budget", len(got))
	}
}

func TestBuildSystemPrompt_TruncationKeepsValidUTF8(t *testing.T) {
	bot := &store.Chatbot{
		ID:           "bot-1",
		Name:         "ventas",
		Instructions: strings.Repeat("€", 3000),
	}

	got := BuildSystemPrompt(bot, "hola", Options{MaxContextTokens: 100})
	if !utf8.ValidString(got) {
		t.Fatalf("truncated prompt is not valid UTF-8: tail %q", got[len(got)-8:])
	}
	if !strings.Contains(got, "€") {
		t.Error("truncated prompt lost the instructions entirely")
	}
}

func TestTruncateAtRune(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{"under limit", "hola", 10, "hola"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte boundary", "a€b", 2, "a"},
		{"exact rune end", "a€b", 4, "a€"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateAtRune(tt.s, tt.limit)
			if got != tt.want {
				t.Errorf("truncateAtRune(%q, %d) = %q, want %q", tt.s, tt.limit, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result %q is not valid UTF-8", got)
			}
		})
	}
}

func TestTruncateHistory(t *testing.T) {
	var history []chat.Message
	for i := 0; i < 40; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		history = append(history, chat.Message{Role: role, Content: strings.Repeat("m", 100)})
	}
	last := "el último mensaje"
	history = append(history, chat.Message{Role: chat.RoleUser, Content: last})

	got := TruncateHistory(history)
	if len(got) > maxHistoryMessages {
		t.Errorf("history length = %d, want <= %d", len(got), maxHistoryMessages)
	}
	if got[len(got)-1].Content != last {
		t.Error("most recent message did not survive truncation")
	}
}

func TestTruncateHistory_CharBudget(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleUser, Content: strings.Repeat("a", 5000)},
		{Role: chat.RoleAssistant, Content: strings.Repeat("b", 5000)},
		{Role: chat.RoleUser, Content: "reciente"},
	}

	got := TruncateHistory(history)
	total := 0
	for _, m := range got {
		total += len(m.Content)
	}
	if total > historyCharBudget {
		t.Errorf("total history chars = %d, want <= %d", total, historyCharBudget)
	}
	if got[len(got)-1].Content != "reciente" {
		t.Error("most recent message did not survive truncation")
	}
}

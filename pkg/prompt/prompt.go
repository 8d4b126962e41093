// Package prompt assembles the enriched system prompt and bounds
// conversation history. The decision/dispatch core treats both as
// opaque pure functions.
package prompt

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/zen-systems/agentgate/pkg/chat"
	"github.com/zen-systems/agentgate/pkg/store"
)

// Options configures prompt assembly.
type Options struct {
	// MaxContextTokens bounds the instructions section. Tokens are
	// estimated at four characters each.
	MaxContextTokens int
	EnableLogging    bool
}

const defaultMaxContextTokens = 800

// BuildSystemPrompt composes the system prompt for a chatbot:
// personality first, then instructions truncated into the context
// budget.
func BuildSystemPrompt(bot *store.Chatbot, message string, opts Options) string {
	maxTokens := opts.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxContextTokens
	}
	budget := maxTokens * 4

	var sb strings.Builder
	if bot.Personality != "" {
		sb.WriteString(bot.Personality)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("Eres el asistente de ")
		sb.WriteString(bot.Name)
		sb.WriteString(". Responde de forma clara y útil.\n\n")
	}

	if bot.Instructions != "" {
		instructions := bot.Instructions
		if len(instructions) > budget {
			instructions = truncateAtRune(instructions, budget)
			if opts.EnableLogging {
				log.Printf("[prompt] instructions truncated to %d chars for chatbot %s", budget, bot.ID)
			}
		}
		sb.WriteString(instructions)
	}

	return strings.TrimSpace(sb.String())
}

// truncateAtRune cuts s to at most limit bytes without splitting a
// rune, so the result is always valid UTF-8.
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// maxHistoryMessages bounds how many prior turns survive truncation.
const maxHistoryMessages = 16

// historyCharBudget bounds the total history size in characters.
const historyCharBudget = 6000

// TruncateHistory bounds a conversation history, dropping the oldest
// turns first. The most recent messages always survive.
func TruncateHistory(history []chat.Message) []chat.Message {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	total := 0
	for _, m := range history {
		total += len(m.Content)
	}
	for len(history) > 1 && total > historyCharBudget {
		total -= len(history[0].Content)
		history = history[1:]
	}
	return history
}

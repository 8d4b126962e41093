package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zen-systems/agentgate/pkg/chat"
	"github.com/zen-systems/agentgate/pkg/integration"
	"github.com/zen-systems/agentgate/pkg/intent"
	"github.com/zen-systems/agentgate/pkg/prompt"
	"github.com/zen-systems/agentgate/pkg/provider"
	"github.com/zen-systems/agentgate/pkg/store"
	"github.com/zen-systems/agentgate/pkg/tools"
)

// ChatRequest is the inbound body for POST /v1/chat.
type ChatRequest struct {
	ChatbotID string         `json:"chatbot_id" binding:"required"`
	UserID    string         `json:"user_id"`
	Message   string         `json:"message" binding:"required"`
	History   []chat.Message `json:"history"`
	Model     string         `json:"model"`
	Stream    bool           `json:"stream"`
}

// ModelInfo reports which model actually answered, so callers can see
// through fallback substitution.
type ModelInfo struct {
	Used            string `json:"used"`
	Preferred       string `json:"preferred"`
	Provider        string `json:"provider"`
	WasFromFallback bool   `json:"wasFromFallback"`
}

// ChatResponse is the buffered completion payload.
type ChatResponse struct {
	Content   string          `json:"content"`
	ModelInfo ModelInfo       `json:"modelInfo"`
	Usage     chat.Usage      `json:"usage"`
	Decision  intent.Decision `json:"decision"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatbot_id and message are required"})
		return
	}

	ctx := c.Request.Context()
	bot, err := s.bots.GetChatbot(ctx, req.ChatbotID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chatbot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	model := s.resolveModel(bot, req.Model)
	tc := s.toolContext(ctx, bot, req.UserID, model)
	decision := s.engine.Decide(req.Message, tc)

	var creds map[intent.Tool]integration.Credentials
	if s.resolver != nil {
		creds = s.resolver.Resolve(ctx, bot.ID, decision)
	}

	chatReq := s.buildRequest(bot, model, req, decision, creds)
	chain := s.chatCfg.FallbackChain(model)

	if req.Stream && bot.EnableStreaming && decision.ShouldStream {
		s.streamChat(c, chatReq, chain)
		return
	}

	result, reports, err := s.executor.ExecuteWithFallback(ctx, chatReq, chain)
	if err != nil {
		respondDispatchError(c, reports, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Content: result.Content,
		ModelInfo: ModelInfo{
			Used:            result.ModelUsed,
			Preferred:       model,
			Provider:        result.ProviderUsed,
			WasFromFallback: result.UsedFallback,
		},
		Usage:    result.Usage,
		Decision: decision,
	})
}

// buildRequest assembles the provider request: system prompt, bounded
// history, then the inbound message. When the decision commits to
// tools, the system prompt is annotated with the capabilities that
// resolved credentials (local tools always qualify).
func (s *Server) buildRequest(bot *store.Chatbot, model string, req ChatRequest, decision intent.Decision, creds map[intent.Tool]integration.Credentials) chat.Request {
	system := prompt.BuildSystemPrompt(bot, req.Message, prompt.Options{
		MaxContextTokens: s.chatCfg.MaxContextTokens,
	})
	if annotation := toolAnnotation(decision, creds); annotation != "" {
		system = system + "\n\n" + annotation
	}

	messages := make([]chat.Message, 0, len(req.History)+2)
	messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: system})
	messages = append(messages, prompt.TruncateHistory(req.History)...)
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: req.Message})

	temperature := bot.Temperature
	if temperature == 0 {
		temperature = s.chatCfg.Temperature
	}
	maxTokens := bot.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.chatCfg.MaxTokens
	}

	return chat.Request{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      req.Stream,
	}
}

func toolAnnotation(decision intent.Decision, creds map[intent.Tool]integration.Credentials) string {
	if !decision.NeedsTools {
		return ""
	}
	available := map[intent.Tool]bool{}
	for _, tool := range decision.SuggestedTools {
		if integration.RequiresCredentials(tool) {
			_, ok := creds[tool]
			available[tool] = ok
		} else {
			available[tool] = true
		}
	}

	var lines []string
	for _, def := range tools.Definitions() {
		if available[def.Tool] {
			lines = append(lines, fmt.Sprintf("- %s: %s", def.Tool, def.Description))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Tienes disponibles estas capacidades:\n" + strings.Join(lines, "\n")
}

// streamChat serves the completion as server-sent events. Each content
// chunk goes out as a JSON data frame; a clean stream ends with a
// [DONE] marker. Errors after the first frame surface as an error
// frame because the status line is already committed, and the stream
// ends there: no [DONE] after a failure.
func (s *Server) streamChat(c *gin.Context, req chat.Request, chain []string) {
	result, reports, err := s.executor.ExecuteStreamWithFallback(c.Request.Context(), req, chain)
	if err != nil {
		respondDispatchError(c, reports, err)
		return
	}
	defer result.Stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Model-Used", result.ModelUsed)
	c.Header("X-Model-Provider", result.ProviderUsed)
	if result.UsedFallback {
		c.Header("X-Model-Fallback", "true")
	}
	c.Status(http.StatusOK)

	for {
		chunk, err := result.Stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				writeSSE(c, gin.H{"error": err.Error()})
				return
			}
			break
		}
		if chunk.Content != "" {
			writeSSE(c, gin.H{"content": chunk.Content})
		}
		if chunk.FinishReason != "" {
			break
		}
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func writeSSE(c *gin.Context, payload any) {
	c.SSEvent("", payload)
	c.Writer.Flush()
}

// respondDispatchError maps provider dispatch failures onto HTTP. An
// exhausted fallback chain is a bad gateway and reports every model
// attempted.
func respondDispatchError(c *gin.Context, reports []provider.AttemptReport, err error) {
	var exhausted *provider.ExhaustedError
	if errors.As(err, &exhausted) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "all providers failed",
			"attempted": exhausted.Attempted,
			"attempts":  reports,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

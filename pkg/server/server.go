// Package server exposes the chat dispatch pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zen-systems/agentgate/pkg/chat"
	"github.com/zen-systems/agentgate/pkg/config"
	"github.com/zen-systems/agentgate/pkg/integration"
	"github.com/zen-systems/agentgate/pkg/intent"
	"github.com/zen-systems/agentgate/pkg/provider"
	"github.com/zen-systems/agentgate/pkg/store"
)

// ChatbotStore loads chatbot configuration.
type ChatbotStore interface {
	GetChatbot(ctx context.Context, id string) (*store.Chatbot, error)
}

// Decider classifies a message against the chatbot's tool context.
type Decider interface {
	Decide(message string, tc intent.ToolContext) intent.Decision
}

// CredentialResolver resolves integration credentials for a decision.
type CredentialResolver interface {
	Resolve(ctx context.Context, chatbotID string, decision intent.Decision) map[intent.Tool]integration.Credentials
}

// Executor dispatches chat requests across the provider fleet.
type Executor interface {
	ExecuteWithFallback(ctx context.Context, req chat.Request, chain []string) (*chat.Result, []provider.AttemptReport, error)
	ExecuteStreamWithFallback(ctx context.Context, req chat.Request, chain []string) (*provider.StreamResult, []provider.AttemptReport, error)
}

// Server wires the decision engine, integration resolver, and provider
// manager behind the HTTP API.
type Server struct {
	bots         ChatbotStore
	integrations integration.Store
	engine       Decider
	resolver     CredentialResolver
	executor     Executor
	chatCfg      *config.ChatConfig
	aliases      *config.ModelAliases
	toolStore    ToolStore
}

// Option configures a Server.
type Option func(*Server)

// WithAliases installs model alias resolution for inbound model names.
func WithAliases(aliases *config.ModelAliases) Option {
	return func(s *Server) { s.aliases = aliases }
}

// WithToolStore enables the direct tool invocation endpoint.
func WithToolStore(ts ToolStore) Option {
	return func(s *Server) { s.toolStore = ts }
}

// New creates a Server. The chat config supplies model defaults and
// fallback chains; nil means built-in defaults.
func New(bots ChatbotStore, integrations integration.Store, engine Decider, resolver CredentialResolver, executor Executor, chatCfg *config.ChatConfig, opts ...Option) *Server {
	if chatCfg == nil {
		chatCfg = config.DefaultChatConfig()
	}
	s := &Server{
		bots:         bots,
		integrations: integrations,
		engine:       engine,
		resolver:     resolver,
		executor:     executor,
		chatCfg:      chatCfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	v1 := r.Group("/v1")
	{
		v1.POST("/chat", s.handleChat)
		v1.GET("/decide", s.handleDecide)
		v1.POST("/tools/:name", s.handleTool)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDecide exposes the classification stage on its own, for
// debugging chatbot trigger configuration.
func (s *Server) handleDecide(c *gin.Context) {
	chatbotID := c.Query("chatbot_id")
	message := c.Query("message")
	if chatbotID == "" || message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatbot_id and message are required"})
		return
	}

	bot, err := s.bots.GetChatbot(c.Request.Context(), chatbotID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chatbot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tc := s.toolContext(c.Request.Context(), bot, c.Query("user_id"), s.resolveModel(bot, ""))
	c.JSON(http.StatusOK, s.engine.Decide(message, tc))
}

// toolContext assembles the engine input for a chatbot. Payment
// integration presence is looked up here so the engine itself never
// touches storage.
func (s *Server) toolContext(ctx context.Context, bot *store.Chatbot, userID, model string) intent.ToolContext {
	hasPayment := false
	if s.integrations != nil {
		if _, err := s.integrations.FindActiveIntegration(ctx, bot.ID, integration.PlatformStripe); err == nil {
			hasPayment = true
		}
	}
	return intent.ToolContext{
		ChatbotID:             bot.ID,
		UserID:                userID,
		Plan:                  intent.Plan(bot.Plan),
		HasPaymentIntegration: hasPayment,
		ModelSupportsTools:    config.SupportsTools(model),
	}
}

// resolveModel picks the model for a request: explicit override first,
// then the chatbot's configured model, then the global default.
// Aliases resolve to canonical names when configured.
func (s *Server) resolveModel(bot *store.Chatbot, override string) string {
	model := override
	if model == "" {
		model = bot.AIModel
	}
	if model == "" {
		model = s.chatCfg.DefaultModel
	}
	if s.aliases != nil {
		model = s.aliases.Resolve(model)
	}
	return model
}

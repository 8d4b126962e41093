package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zen-systems/agentgate/pkg/integration"
	"github.com/zen-systems/agentgate/pkg/intent"
	"github.com/zen-systems/agentgate/pkg/tools"
)

// ToolStore combines the persistence contracts the tool handlers need.
type ToolStore interface {
	tools.ContactStore
	tools.ReminderStore
}

// ToolRequest is the inbound body for POST /v1/tools/:name. Input is
// tool-specific and decoded by the matching handler.
type ToolRequest struct {
	ChatbotID string          `json:"chatbot_id" binding:"required"`
	UserID    string          `json:"user_id"`
	Message   string          `json:"message"`
	Input     json.RawMessage `json:"input"`
}

// handleTool invokes one tool directly, bypassing the decision engine.
// The chat path only suggests tools; execution lands here.
func (s *Server) handleTool(c *gin.Context) {
	if s.toolStore == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "tool execution not configured"})
		return
	}

	var req ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatbot_id is required"})
		return
	}

	ctx := c.Request.Context()
	tc := tools.Context{
		ChatbotID: req.ChatbotID,
		UserID:    req.UserID,
		Message:   req.Message,
	}

	var (
		resp tools.Response
		err  error
	)
	switch intent.Tool(c.Param("name")) {
	case intent.ToolSaveContactInfo:
		var input tools.SaveContactInput
		if err := decodeInput(req.Input, &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		resp, err = tools.NewContactHandler(s.toolStore).Handle(ctx, input, tc)

	case intent.ToolScheduleReminder:
		var input tools.ScheduleReminderInput
		if err := decodeInput(req.Input, &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		resp, err = tools.NewReminderHandler(s.toolStore).Handle(ctx, input, tc)

	case intent.ToolCreatePaymentLink:
		creds, credErr := s.paymentCredentials(c, req.ChatbotID)
		if credErr != nil {
			return
		}
		var input tools.CreatePaymentLinkInput
		if err := decodeInput(req.Input, &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		resp, err = tools.NewPaymentLinkHandler(creds).Handle(ctx, input, tc)

	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func decodeInput(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// paymentCredentials loads the chatbot's active payment integration,
// writing the HTTP error itself when resolution fails.
func (s *Server) paymentCredentials(c *gin.Context, chatbotID string) (integration.PaymentCredentials, error) {
	creds, err := s.integrations.FindActiveIntegration(c.Request.Context(), chatbotID, integration.PlatformStripe)
	if err != nil {
		if errors.Is(err, integration.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "payment integration not configured"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return integration.PaymentCredentials{}, err
	}
	payment, ok := creds.(integration.PaymentCredentials)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected credential type"})
		return integration.PaymentCredentials{}, errors.New("unexpected credential type")
	}
	return payment, nil
}

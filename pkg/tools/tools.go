// Package tools implements the side-effecting capabilities the agent
// may invoke instead of, or alongside, a plain conversational reply.
package tools

import "github.com/zen-systems/agentgate/pkg/intent"

// Context carries the request identity into a handler.
type Context struct {
	ChatbotID      string
	UserID         string
	ConversationID string
	Message        string
}

// Response is the normalized handler outcome. Message is user-facing
// and safe to feed back into the conversation.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Definition describes a tool for prompt annotation.
type Definition struct {
	Tool        intent.Tool
	Description string
}

// Definitions lists the capabilities this package implements.
func Definitions() []Definition {
	return []Definition{
		{
			Tool:        intent.ToolCreatePaymentLink,
			Description: "Genera un link de pago para un monto acordado.",
		},
		{
			Tool:        intent.ToolScheduleReminder,
			Description: "Agenda un recordatorio para una fecha y hora.",
		},
		{
			Tool:        intent.ToolSaveContactInfo,
			Description: "Guarda los datos de contacto del prospecto.",
		},
	}
}

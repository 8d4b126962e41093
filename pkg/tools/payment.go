package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zen-systems/agentgate/pkg/integration"
)

// CreatePaymentLinkInput describes the requested charge. Amount is in
// minor units (cents).
type CreatePaymentLinkInput struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description,omitempty"`
}

// PaymentLinkHandler assembles payment links from the chatbot's
// payment credentials. The checkout flow behind the link is external;
// only link construction is handled here.
type PaymentLinkHandler struct {
	creds integration.PaymentCredentials
}

// NewPaymentLinkHandler creates the handler bound to resolved payment
// credentials.
func NewPaymentLinkHandler(creds integration.PaymentCredentials) *PaymentLinkHandler {
	return &PaymentLinkHandler{creds: creds}
}

// Handle validates the charge and returns the link.
func (h *PaymentLinkHandler) Handle(_ context.Context, input CreatePaymentLinkInput, tc Context) (Response, error) {
	if h.creds.APIKey == "" {
		return Response{}, fmt.Errorf("payment integration not configured for chatbot %s", tc.ChatbotID)
	}
	if input.Amount <= 0 {
		return Response{Message: "El monto del pago debe ser mayor a cero."}, nil
	}

	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = strings.ToLower(h.creds.Currency)
	}
	if currency == "" {
		currency = "mxn"
	}

	reference := uuid.NewString()
	link := fmt.Sprintf("https://pay.agentgate.dev/%s/%s", h.creds.AccountID, reference)

	return Response{
		Success: true,
		Message: fmt.Sprintf("Aquí tienes tu link de pago por %.2f %s: %s", float64(input.Amount)/100, strings.ToUpper(currency), link),
		Data: map[string]any{
			"payment_link": link,
			"reference":    reference,
			"amount":       input.Amount,
			"currency":     currency,
			"description":  input.Description,
		},
	}, nil
}

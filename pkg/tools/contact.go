package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/zen-systems/agentgate/pkg/store"
)

// ContactStore is the narrow persistence contract for contact capture.
type ContactStore interface {
	FindContactByEmail(ctx context.Context, chatbotID, email string) (*store.Contact, error)
	FindContactByName(ctx context.Context, chatbotID, name string) (*store.Contact, error)
	SaveContact(ctx context.Context, contact *store.Contact) error
	ActiveConversation(ctx context.Context, chatbotID string) (*store.Conversation, error)
}

// SaveContactInput is the information extracted from the conversation.
type SaveContactInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
	Website  string `json:"website,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ContactHandler persists lead contact information, deduplicating by
// email first and by name for email-less contacts.
type ContactHandler struct {
	store ContactStore
}

// NewContactHandler creates the contact capture handler.
func NewContactHandler(store ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Handle saves or updates a contact. Validation failures come back as
// unsuccessful responses with a user-facing message, not errors:
// errors are reserved for storage problems.
func (h *ContactHandler) Handle(ctx context.Context, input SaveContactInput, tc Context) (Response, error) {
	if input.Name == "" && input.Email == "" {
		return Response{
			Message: "Se requiere al menos un nombre o email para guardar el contacto.",
		}, nil
	}
	if input.Email != "" && !emailPattern.MatchString(input.Email) {
		return Response{
			Message: "El formato del email no es válido.",
		}, nil
	}

	conversationID := ""
	if conv, err := h.store.ActiveConversation(ctx, tc.ChatbotID); err == nil {
		conversationID = conv.ID
	}

	existing, err := h.findExisting(ctx, tc.ChatbotID, input)
	if err != nil {
		return Response{}, fmt.Errorf("contact lookup: %w", err)
	}

	if existing != nil {
		applyContactInput(existing, input)
		if conversationID != "" {
			existing.ConversationID = conversationID
		}
		if err := h.store.SaveContact(ctx, existing); err != nil {
			return Response{}, fmt.Errorf("update contact: %w", err)
		}
		return Response{
			Success: true,
			Message: fmt.Sprintf("Perfecto, he actualizado la información de contacto de %s.", displayName(input)),
			Data: map[string]any{
				"contact_id": existing.ID,
				"action":     "updated",
			},
		}, nil
	}

	contact := &store.Contact{
		ChatbotID:      tc.ChatbotID,
		ConversationID: conversationID,
		Source:         "chatbot",
	}
	applyContactInput(contact, input)
	if err := h.store.SaveContact(ctx, contact); err != nil {
		return Response{}, fmt.Errorf("create contact: %w", err)
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("He guardado tu información de contacto, gracias %s. Estaremos en contacto pronto.", displayName(input)),
		Data: map[string]any{
			"contact_id": contact.ID,
			"action":     "created",
		},
	}, nil
}

func (h *ContactHandler) findExisting(ctx context.Context, chatbotID string, input SaveContactInput) (*store.Contact, error) {
	if input.Email != "" {
		contact, err := h.store.FindContactByEmail(ctx, chatbotID, input.Email)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return contact, err
	}
	contact, err := h.store.FindContactByName(ctx, chatbotID, input.Name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return contact, err
}

func applyContactInput(contact *store.Contact, input SaveContactInput) {
	if input.Name != "" {
		contact.Name = input.Name
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Phone != "" {
		contact.Phone = input.Phone
	}
	if input.Company != "" {
		contact.Company = input.Company
	}
	if input.Position != "" {
		contact.Position = input.Position
	}
	if input.Website != "" {
		contact.Website = input.Website
	}
	if input.Notes != "" {
		contact.Notes = input.Notes
	}
}

func displayName(input SaveContactInput) string {
	if input.Name != "" {
		return input.Name
	}
	return input.Email
}

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/zen-systems/agentgate/pkg/store"
)

// ReminderStore is the narrow persistence contract for scheduling.
type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *store.Reminder) error
}

// ScheduleReminderInput describes the reminder to create. RemindAt
// accepts RFC 3339 or a local "2006-01-02 15:04" timestamp.
type ScheduleReminderInput struct {
	Title    string `json:"title"`
	Notes    string `json:"notes,omitempty"`
	RemindAt string `json:"remind_at"`
}

// ReminderHandler persists scheduled reminders for later dispatch.
type ReminderHandler struct {
	store ReminderStore
	now   func() time.Time
}

// NewReminderHandler creates the reminder scheduling handler.
func NewReminderHandler(store ReminderStore) *ReminderHandler {
	return &ReminderHandler{store: store, now: time.Now}
}

// Handle validates and persists a reminder.
func (h *ReminderHandler) Handle(ctx context.Context, input ScheduleReminderInput, tc Context) (Response, error) {
	if input.Title == "" {
		return Response{Message: "Falta el título del recordatorio."}, nil
	}

	remindAt, err := parseRemindAt(input.RemindAt)
	if err != nil {
		return Response{Message: "No entendí la fecha del recordatorio. Usa un formato como 2026-09-02 10:00."}, nil
	}
	if !remindAt.After(h.now()) {
		return Response{Message: "La fecha del recordatorio ya pasó."}, nil
	}

	reminder := &store.Reminder{
		ChatbotID: tc.ChatbotID,
		UserID:    tc.UserID,
		Title:     input.Title,
		Notes:     input.Notes,
		RemindAt:  remindAt,
	}
	if err := h.store.CreateReminder(ctx, reminder); err != nil {
		return Response{}, fmt.Errorf("create reminder: %w", err)
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("Listo, te recordaré %q el %s.", input.Title, remindAt.Format("2006-01-02 15:04")),
		Data: map[string]any{
			"reminder_id": reminder.ID,
			"remind_at":   remindAt.Format(time.RFC3339),
		},
	}, nil
}

func parseRemindAt(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", value, time.Local)
}

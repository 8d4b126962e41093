package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zen-systems/agentgate/pkg/integration"
	"github.com/zen-systems/agentgate/pkg/store"
)

type fakeContactStore struct {
	byEmail      map[string]*store.Contact
	byName       map[string]*store.Contact
	saved        []*store.Contact
	conversation *store.Conversation
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{
		byEmail: map[string]*store.Contact{},
		byName:  map[string]*store.Contact{},
	}
}

func (s *fakeContactStore) FindContactByEmail(_ context.Context, _, email string) (*store.Contact, error) {
	if c, ok := s.byEmail[email]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeContactStore) FindContactByName(_ context.Context, _, name string) (*store.Contact, error) {
	if c, ok := s.byName[name]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeContactStore) SaveContact(_ context.Context, contact *store.Contact) error {
	if contact.ID == "" {
		contact.ID = "contact-1"
	}
	s.saved = append(s.saved, contact)
	return nil
}

func (s *fakeContactStore) ActiveConversation(_ context.Context, _ string) (*store.Conversation, error) {
	if s.conversation == nil {
		return nil, store.ErrNotFound
	}
	return s.conversation, nil
}

func TestContactHandler_RequiresNameOrEmail(t *testing.T) {
	h := NewContactHandler(newFakeContactStore())

	resp, err := h.Handle(context.Background(), SaveContactInput{Phone: "555-1234"}, Context{ChatbotID: "bot-1"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "nombre o email")
}

func TestContactHandler_RejectsBadEmail(t *testing.T) {
	h := NewContactHandler(newFakeContactStore())

	resp, err := h.Handle(context.Background(), SaveContactInput{Email: "not-an-email"}, Context{ChatbotID: "bot-1"})
	require.NoError(t, err)
	require.False(t, resp.Success)
}

func TestContactHandler_CreatesNewContact(t *testing.T) {
	fs := newFakeContactStore()
	fs.conversation = &store.Conversation{ID: "conv-7"}
	h := NewContactHandler(fs)

	resp, err := h.Handle(context.Background(), SaveContactInput{
		Name:    "Ana García",
		Email:   "ana@example.com",
		Company: "García SA",
	}, Context{ChatbotID: "bot-1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "created", resp.Data["action"])

	require.Len(t, fs.saved, 1)
	saved := fs.saved[0]
	require.Equal(t, "Ana García", saved.Name)
	require.Equal(t, "conv-7", saved.ConversationID)
	require.Equal(t, "chatbot", saved.Source)
}

func TestContactHandler_UpdatesByEmail(t *testing.T) {
	fs := newFakeContactStore()
	fs.byEmail["ana@example.com"] = &store.Contact{
		ID:    "contact-9",
		Name:  "Ana",
		Email: "ana@example.com",
	}
	h := NewContactHandler(fs)

	resp, err := h.Handle(context.Background(), SaveContactInput{
		Email: "ana@example.com",
		Phone: "555-0000",
	}, Context{ChatbotID: "bot-1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "updated", resp.Data["action"])
	require.Equal(t, "contact-9", resp.Data["contact_id"])

	require.Len(t, fs.saved, 1)
	require.Equal(t, "555-0000", fs.saved[0].Phone)
	require.Equal(t, "Ana", fs.saved[0].Name)
}

type fakeReminderStore struct {
	created []*store.Reminder
}

func (s *fakeReminderStore) CreateReminder(_ context.Context, reminder *store.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = "rem-1"
	}
	s.created = append(s.created, reminder)
	return nil
}

func TestReminderHandler_SchedulesFutureReminder(t *testing.T) {
	fs := &fakeReminderStore{}
	h := NewReminderHandler(fs)
	h.now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }

	resp, err := h.Handle(context.Background(), ScheduleReminderInput{
		Title:    "Enviar propuesta",
		RemindAt: "2026-09-02T10:00:00Z",
	}, Context{ChatbotID: "bot-1", UserID: "user-1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "rem-1", resp.Data["reminder_id"])

	require.Len(t, fs.created, 1)
	require.Equal(t, "user-1", fs.created[0].UserID)
	require.Equal(t, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC), fs.created[0].RemindAt.UTC())
}

func TestReminderHandler_RejectsPastAndUnparseable(t *testing.T) {
	fs := &fakeReminderStore{}
	h := NewReminderHandler(fs)
	h.now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		input ScheduleReminderInput
	}{
		{"missing title", ScheduleReminderInput{RemindAt: "2026-09-02T10:00:00Z"}},
		{"unparseable date", ScheduleReminderInput{Title: "x", RemindAt: "mañana temprano"}},
		{"past date", ScheduleReminderInput{Title: "x", RemindAt: "2026-08-31T10:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.Handle(context.Background(), tt.input, Context{ChatbotID: "bot-1"})
			require.NoError(t, err)
			require.False(t, resp.Success)
			require.Empty(t, fs.created)
		})
	}
}

func TestPaymentLinkHandler_BuildsLink(t *testing.T) {
	h := NewPaymentLinkHandler(integration.PaymentCredentials{
		APIKey:    "sk_test_123",
		AccountID: "acct_42",
		Currency:  "MXN",
	})

	resp, err := h.Handle(context.Background(), CreatePaymentLinkInput{
		Amount:      150000,
		Description: "Plan anual",
	}, Context{ChatbotID: "bot-1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Contains(t, resp.Data["payment_link"], "https://pay.agentgate.dev/acct_42/")
	require.Equal(t, "mxn", resp.Data["currency"])
	require.Contains(t, resp.Message, "1500.00 MXN")
}

func TestPaymentLinkHandler_Rejections(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		h := NewPaymentLinkHandler(integration.PaymentCredentials{})
		_, err := h.Handle(context.Background(), CreatePaymentLinkInput{Amount: 100}, Context{ChatbotID: "bot-1"})
		require.Error(t, err)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		h := NewPaymentLinkHandler(integration.PaymentCredentials{APIKey: "k", AccountID: "a"})
		resp, err := h.Handle(context.Background(), CreatePaymentLinkInput{Amount: 0}, Context{ChatbotID: "bot-1"})
		require.NoError(t, err)
		require.False(t, resp.Success)
	})
}

func TestDefinitions_CoverAllTools(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 3)

	names := map[string]bool{}
	for _, d := range defs {
		names[string(d.Tool)] = true
		require.NotEmpty(t, d.Description)
	}
	require.True(t, names["create_payment_link"])
	require.True(t, names["schedule_reminder"])
	require.True(t, names["save_contact_info"])
}

// Package store is the persistence layer: chatbot configuration,
// integrations, captured contacts, reminders and conversations, backed
// by SQLite through GORM. The decision/dispatch core consumes it only
// through narrow read/write contracts.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/agentgate/pkg/integration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Chatbot holds per-bot configuration.
type Chatbot struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"index"`
	Name            string
	Plan            string
	AIModel         string
	Temperature     float64
	MaxTokens       int
	EnableStreaming bool
	Personality     string
	Instructions    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Integration is an external platform connection for a chatbot.
type Integration struct {
	ID        string `gorm:"primaryKey"`
	ChatbotID string `gorm:"index"`
	Platform  string `gorm:"index"`
	APIKey    string
	AccountID string
	Currency  string
	TimeZone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is a lead captured from a conversation.
type Contact struct {
	ID             string `gorm:"primaryKey"`
	ChatbotID      string `gorm:"index"`
	ConversationID string
	Name           string
	Email          string `gorm:"index"`
	Phone          string
	Company        string
	Position       string
	Website        string
	Notes          string
	Source         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Reminder is a scheduled notification.
type Reminder struct {
	ID        string `gorm:"primaryKey"`
	ChatbotID string `gorm:"index"`
	UserID    string
	Title     string
	Notes     string
	RemindAt  time.Time `gorm:"index"`
	Sent      bool
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conversation groups messages of one chat session.
type Conversation struct {
	ID        string `gorm:"primaryKey"`
	ChatbotID string `gorm:"index"`
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("record not found")

// Store wraps the database connection.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Chatbot{}, &Integration{}, &Contact{}, &Reminder{}, &Conversation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetChatbot loads a chatbot by id.
func (s *Store) GetChatbot(ctx context.Context, id string) (*Chatbot, error) {
	var bot Chatbot
	err := s.db.WithContext(ctx).First(&bot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

// SaveChatbot inserts or updates a chatbot.
func (s *Store) SaveChatbot(ctx context.Context, bot *Chatbot) error {
	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Save(bot).Error
}

// SaveIntegration inserts or updates an integration.
func (s *Store) SaveIntegration(ctx context.Context, in *Integration) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Save(in).Error
}

// FindActiveIntegration implements integration.Store: it loads the
// active credentials for a chatbot and platform as the typed variant
// the resolver hands out.
func (s *Store) FindActiveIntegration(ctx context.Context, chatbotID string, platform integration.Platform) (integration.Credentials, error) {
	var in Integration
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND platform = ? AND is_active = ? AND api_key <> ''", chatbotID, string(platform), true).
		First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, integration.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch platform {
	case integration.PlatformStripe:
		return integration.PaymentCredentials{
			APIKey:    in.APIKey,
			AccountID: in.AccountID,
			Currency:  in.Currency,
		}, nil
	case integration.PlatformCalendar:
		return integration.CalendarCredentials{
			APIKey:     in.APIKey,
			CalendarID: in.AccountID,
			TimeZone:   in.TimeZone,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported platform %s", platform)
	}
}

// FindContactByEmail loads a chatbot's contact by email.
func (s *Store) FindContactByEmail(ctx context.Context, chatbotID, email string) (*Contact, error) {
	var contact Contact
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND email = ?", chatbotID, email).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindContactByName loads a chatbot's email-less contact by name.
func (s *Store) FindContactByName(ctx context.Context, chatbotID, name string) (*Contact, error) {
	var contact Contact
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND name = ? AND email = ''", chatbotID, name).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// SaveContact inserts or updates a contact.
func (s *Store) SaveContact(ctx context.Context, contact *Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Save(contact).Error
}

// CreateReminder persists a new reminder.
func (s *Store) CreateReminder(ctx context.Context, reminder *Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(reminder).Error
}

// DueReminders returns unsent reminders whose time has passed.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	var due []Reminder
	err := s.db.WithContext(ctx).
		Where("sent = ? AND remind_at <= ?", false, now).
		Order("remind_at").
		Find(&due).Error
	return due, err
}

// MarkReminderSent flags a reminder as delivered.
func (s *Store) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&Reminder{}).
		Where("id = ?", id).
		Updates(map[string]any{"sent": true, "sent_at": at}).Error
}

// ActiveConversation returns the most recent active conversation for a
// chatbot, if any.
func (s *Store) ActiveConversation(ctx context.Context, chatbotID string) (*Conversation, error) {
	var conv Conversation
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND status = ?", chatbotID, "ACTIVE").
		Order("created_at DESC").
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// SaveConversation inserts or updates a conversation.
func (s *Store) SaveConversation(ctx context.Context, conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Save(conv).Error
}

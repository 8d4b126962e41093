// Package integration lazily resolves per-chatbot credentials for the
// tools a decision actually suggested. When no tools are suggested, no
// storage is touched at all.
package integration

// Platform identifies an external integration platform.
type Platform string

const (
	PlatformStripe   Platform = "STRIPE"
	PlatformCalendar Platform = "CALENDAR"
)

// Credentials is a tagged variant over the per-platform credential
// shapes. The closed set keeps the resolver's return type exhaustively
// checkable instead of an open-ended untyped bag.
type Credentials interface {
	Platform() Platform
}

// PaymentCredentials configures payment-link creation.
type PaymentCredentials struct {
	APIKey    string
	AccountID string
	Currency  string
}

func (PaymentCredentials) Platform() Platform { return PlatformStripe }

// CalendarCredentials configures reminder scheduling against an
// external calendar.
type CalendarCredentials struct {
	APIKey     string
	CalendarID string
	TimeZone   string
}

func (CalendarCredentials) Platform() Platform { return PlatformCalendar }

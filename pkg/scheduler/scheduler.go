// Package scheduler dispatches due reminders on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zen-systems/agentgate/pkg/store"
)

// ReminderSource lists due reminders and records their dispatch.
type ReminderSource interface {
	DueReminders(ctx context.Context, now time.Time) ([]store.Reminder, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// Notifier delivers a single reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, reminder store.Reminder) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, reminder store.Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, reminder store.Reminder) error {
	return f(ctx, reminder)
}

// LogNotifier writes reminders to the process log. It stands in until
// a delivery channel is wired up.
var LogNotifier = NotifierFunc(func(_ context.Context, r store.Reminder) error {
	log.Printf("[scheduler] reminder due: chatbot=%s user=%s title=%q", r.ChatbotID, r.UserID, r.Title)
	return nil
})

// Scheduler polls for due reminders once a minute and hands them to
// the notifier. A reminder is only marked sent after the notifier
// accepts it, so failed deliveries retry on the next tick.
type Scheduler struct {
	source   ReminderSource
	notifier Notifier
	cron     *cron.Cron
	now      func() time.Time
	debug    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDebug enables per-tick logging.
func WithDebug(debug bool) Option {
	return func(s *Scheduler) { s.debug = debug }
}

// New creates a reminder scheduler.
func New(source ReminderSource, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		notifier: notifier,
		cron:     cron.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the dispatch loop. The context bounds each tick's
// storage and delivery calls.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.Tick(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Tick dispatches every reminder due at the current time. It returns
// the number of reminders delivered.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now()
	due, err := s.source.DueReminders(ctx, now)
	if err != nil {
		log.Printf("[scheduler] listing due reminders: %v", err)
		return 0
	}
	if s.debug {
		log.Printf("[scheduler] tick at %s: %d due", now.Format(time.RFC3339), len(due))
	}

	sent := 0
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			log.Printf("[scheduler] delivering reminder %s: %v", r.ID, err)
			continue
		}
		if err := s.source.MarkReminderSent(ctx, r.ID, now); err != nil {
			log.Printf("[scheduler] marking reminder %s sent: %v", r.ID, err)
			continue
		}
		sent++
	}
	return sent
}

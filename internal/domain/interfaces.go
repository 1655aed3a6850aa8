package domain

import (
	"context"
	"time"

	"salonflow/internal/models"
)

// SessionRepository is the raw keyed TTL storage behind the session store.
// Implementations return errors; the session.Store decides which of them are
// swallowed.
type SessionRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Refresh(ctx context.Context, key string, ttl time.Duration) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Messenger delivers a text message to a customer via the external channel.
type Messenger interface {
	SendText(ctx context.Context, recipient string, body string) (messageID string, err error)
}

// Job is a unit of delayed work.
type Job struct {
	ID          string
	Kind        models.JobKind
	Payload     []byte
	RunAt       time.Time
	Attempts    int
	MaxAttempts int
	LastError   string
}

// JobQueue schedules delayed jobs with upsert semantics: enqueueing an id
// that is already scheduled replaces its timer instead of adding a second one.
type JobQueue interface {
	Enqueue(ctx context.Context, job Job) error
	Remove(ctx context.Context, id string) error
	Lookup(ctx context.Context, id string) (*Job, error)
}

// ReminderStore is the durable side of the reminder state machine.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *models.Reminder) error
	GetReminder(ctx context.Context, id int64) (*models.Reminder, error)
	LatestReminder(ctx context.Context, bookingID int64, statuses ...models.ReminderStatus) (*models.Reminder, error)
	UpdateReminderStatus(ctx context.Context, id int64, status models.ReminderStatus, lastError string) error
	MarkReminderSent(ctx context.Context, id int64, messageID string) error
	IncrementReminderAttempts(ctx context.Context, id int64) error
	RecordReminderResponse(ctx context.Context, id int64, action models.ResponseAction, text string) error
	ReminderStats(ctx context.Context, salonID int64) (*models.ReminderStats, error)
	RemindersBySalon(ctx context.Context, salonID int64) ([]models.Reminder, error)
}

// BookingStore is the slice of the relational store the reminder flow needs.
type BookingStore interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	SetBookingReminded(ctx context.Context, id int64) error
	RecordBookingResponse(ctx context.Context, id int64, action models.ResponseAction, text string) error
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReminderSent     = "reminder_sent"
	EventReminderFailed   = "reminder_failed"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

// ReminderEventPayload describes the minimal reminder snapshot for event consumers.
type ReminderEventPayload struct {
	ReminderID int64     `json:"reminder_id"`
	BookingID  int64     `json:"booking_id"`
	SalonID    int64     `json:"salon_id"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	StartAt    time.Time `json:"start_at"`
}

// BookingEventPayload describes a booking status change triggered by a reply.
type BookingEventPayload struct {
	BookingID    int64  `json:"booking_id"`
	SalonID      int64  `json:"salon_id"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	Action       string `json:"action,omitempty"`
	ResponseText string `json:"response_text,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

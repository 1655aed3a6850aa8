package events

import (
	"encoding/json"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventReminderSent, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := ReminderEventPayload{ReminderID: 11, BookingID: 7, Status: "sent", Attempts: 1}
	err := bus.PublishJSON(EventReminderSent, payload)
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventReminderSent {
		t.Errorf("expected type %s, got %s", EventReminderSent, received.Type)
	}

	var decoded ReminderEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.ReminderID != 11 || decoded.BookingID != 7 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventBookingConfirmed, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventBookingConfirmed, func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: EventBookingConfirmed})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	err := bus.PublishJSON("unknown", nil)
	if err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestEventBusNilReceiver(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventReminderFailed, nil); err != nil {
		t.Errorf("nil bus PublishJSON failed: %v", err)
	}
}

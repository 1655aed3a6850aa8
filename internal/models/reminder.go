package models

import "time"

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderDelivered ReminderStatus = "delivered"
	ReminderRead      ReminderStatus = "read"
	ReminderFailed    ReminderStatus = "failed"
	ReminderCancelled ReminderStatus = "cancelled"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderPending, ReminderSent, ReminderDelivered, ReminderRead, ReminderFailed, ReminderCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further automatic action happens in this state.
func (s ReminderStatus) Terminal() bool {
	return s == ReminderFailed || s == ReminderCancelled
}

// ResponseAction classifies a customer's reply to a reminder.
type ResponseAction string

const (
	ActionConfirm    ResponseAction = "confirm"
	ActionCancel     ResponseAction = "cancel"
	ActionReschedule ResponseAction = "reschedule"
	ActionUnknown    ResponseAction = "unknown"
)

func (a ResponseAction) Valid() bool {
	switch a {
	case ActionConfirm, ActionCancel, ActionReschedule, ActionUnknown:
		return true
	default:
		return false
	}
}

// Reminder is the durable record of one pre-appointment notification.
// Rows are never hard-deleted: superseded and cancelled reminders stay
// around for audit and stats.
type Reminder struct {
	ID                 int64          `json:"id"`
	BookingID          int64          `json:"booking_id"`
	SalonID            int64          `json:"salon_id"`
	ScheduledAt        time.Time      `json:"scheduled_at"`
	Status             ReminderStatus `json:"status"`
	JobID              string         `json:"job_id"`
	Attempts           int            `json:"attempts"`
	LastError          string         `json:"last_error,omitempty"`
	MessageID          string         `json:"message_id,omitempty"`
	SentAt             *time.Time     `json:"sent_at,omitempty"`
	ResponseReceivedAt *time.Time     `json:"response_received_at,omitempty"`
	ResponseAction     ResponseAction `json:"response_action,omitempty"`
	ResponseText       string         `json:"response_text,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// ReminderStats aggregates delivery outcomes for a salon.
type ReminderStats struct {
	Total        int    `json:"total"`
	Sent         int    `json:"sent"`
	Confirmed    int    `json:"confirmed"`
	Cancelled    int    `json:"cancelled"`
	Failed       int    `json:"failed"`
	DeliveryRate string `json:"delivery_rate"` // "%.1f", "0.0" when total is 0
	ResponseRate string `json:"response_rate"` // "%.1f", "0.0" when sent is 0
}

package models

import "time"

// BookingIntent holds what the customer originally asked for. Partial by
// nature: any subset of fields may be filled during the conversation.
type BookingIntent struct {
	ServiceID   int64  `json:"service_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Date        string `json:"date,omitempty"` // 2006-01-02
	Time        string `json:"time,omitempty"` // 15:04
	MasterID    int64  `json:"master_id,omitempty"`
}

// ContextChoice records an alternative the customer picked.
type ContextChoice struct {
	ChoiceID   string    `json:"choice_id"`
	SelectedAt time.Time `json:"selected_at"`
}

// BookingContext is the ephemeral per-customer conversation state. It is
// keyed externally by a normalized phone number; at most one live context
// exists per phone at any time.
type BookingContext struct {
	SessionID         string          `json:"session_id"`
	CustomerID        int64           `json:"customer_id"`
	SalonID           int64           `json:"salon_id"`
	Language          Language        `json:"language"`
	OriginalIntent    BookingIntent   `json:"original_intent"`
	Choices           []ContextChoice `json:"choices,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	LastInteractionAt time.Time       `json:"last_interaction_at"`
}

// Complete reports whether the deserialized context carries the fields a
// handler may rely on. Payloads that fail this check are treated as corrupt.
func (c *BookingContext) Complete() bool {
	return c != nil && c.SessionID != "" && !c.CreatedAt.IsZero() && !c.LastInteractionAt.IsZero()
}

package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	default:
		return false
	}
}

type Booking struct {
	ID             int64          `json:"id"`
	SalonID        int64          `json:"salon_id"`
	CustomerID     int64          `json:"customer_id"`
	CustomerName   string         `json:"customer_name"`
	Phone          string         `json:"phone"`
	ServiceID      int64          `json:"service_id"`
	ServiceName    string         `json:"service_name"`
	MasterName     string         `json:"master_name"`
	StartAt        time.Time      `json:"start_at"`
	Status         BookingStatus  `json:"status"`
	Language       Language       `json:"language"`
	Reminded       bool           `json:"reminded"`
	ResponseText   string         `json:"response_text,omitempty"`
	ResponseAction ResponseAction `json:"response_action,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

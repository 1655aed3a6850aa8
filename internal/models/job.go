package models

// JobKind is the closed set of delayed-job types. The queue worker keeps a
// total handler mapping over these, so adding a kind without a handler is a
// startup error, not a runtime one.
type JobKind string

const (
	JobReminderSend JobKind = "reminder_send"
)

func (k JobKind) Valid() bool {
	switch k {
	case JobReminderSend:
		return true
	default:
		return false
	}
}

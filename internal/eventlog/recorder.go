package eventlog

import (
	"context"
	"time"
)

const (
	EventBookingConfirmed = "booking_confirmed"
	EventFormsSent        = "forms_sent"
	EventReminder1        = "reminder_1"
	EventReminder2        = "reminder_2"
	EventReminder3        = "reminder_3"
)

const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Event is one reminder or lifecycle entry tied to an appointment.
type Event struct {
	ID             int64
	AppointmentID  string
	EventType      string
	Channel        string
	Recipient      string
	Status         string
	FormFilled     *bool
	VisitConfirmed *bool
	CancelReason   *string
	CreatedAt      time.Time
}

// Recorder persists appointment lifecycle and reminder events. Failures here
// never roll back an already committed booking.
type Recorder interface {
	Record(ctx context.Context, ev Event) error

	// ListQueued returns up to limit events still awaiting dispatch,
	// oldest first.
	ListQueued(ctx context.Context, limit int) ([]Event, error)

	// MarkSent transitions one queued event to sent.
	MarkSent(ctx context.Context, id int64) error
}

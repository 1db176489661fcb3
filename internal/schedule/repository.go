package schedule

import (
	"context"
	"errors"
)

var (
	ErrSlotConflict       = errors.New("selected slot is no longer available")
	ErrAppointmentIDTaken = errors.New("appointment id already assigned")
	ErrBookingNotFound    = errors.New("booking not found")
)

// Repository contains all DB interactions needed by the store.
type Repository interface {
	// ListFreeSlots returns free slots for the doctor at the location
	// (case-insensitive) with date >= dateFrom, ordered by (date, start_time).
	ListFreeSlots(ctx context.Context, doctorID, location, dateFrom string) ([]AtomicSlot, error)

	// ReserveWindow transitions every composing slot to booked and inserts
	// the booking row as one transaction. It fails with ErrSlotConflict,
	// leaving no slot mutated, if any composing slot is not free at commit
	// time, and with ErrAppointmentIDTaken on an appointment id collision.
	ReserveWindow(ctx context.Context, w Window, appointmentID, patientID string) (*Booking, error)

	// GetBooking loads one booking by appointment id.
	GetBooking(ctx context.Context, appointmentID string) (*Booking, error)
}

package schedule

import (
	"fmt"
	"time"
)

// SlotWidth is the fixed width of every atomic calendar slot.
const SlotWidth = 30 * time.Minute

const clockLayout = "15:04"

type SlotStatus string

const (
	SlotFree   SlotStatus = "free"
	SlotBooked SlotStatus = "booked"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
)

// AtomicSlot is one pre-provisioned calendar cell. The engine never creates
// or deletes slots, it only transitions status free -> booked.
type AtomicSlot struct {
	DoctorID      string
	DoctorName    string
	Location      string
	Date          string // YYYY-MM-DD
	StartTime     string // HH:MM
	EndTime       string // HH:MM
	Status        SlotStatus
	AppointmentID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SlotRef identifies one atomic slot by its natural key.
type SlotRef struct {
	DoctorID  string
	Date      string
	StartTime string
	EndTime   string
}

// Window is a candidate bookable interval: a single atomic slot or an
// ordered run of exactly chained same-doctor same-day slots. Ephemeral,
// computed on demand.
type Window struct {
	DoctorID   string
	DoctorName string
	Location   string
	Date       string
	StartTime  string
	EndTime    string
	Slots      []SlotRef
}

// Booking is the immutable outcome of one successful reservation.
type Booking struct {
	AppointmentID string
	DoctorID      string
	Date          string
	StartTime     string
	EndTime       string
	PatientID     string
	Status        BookingStatus
	CreatedAt     time.Time
}

// AppointmentID derives an appointment identifier from the reservation
// timestamp at second resolution.
func AppointmentID(t time.Time) string {
	return "A" + t.Format("20060102150405")
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/clinicdesk/appointment-scheduling/internal/redis"
)

var (
	ErrWindowMismatch = errors.New("window does not form one chained doctor-date run")
	ErrScheduleBusy   = errors.New("schedule is currently being booked, please retry")
)

// Store reserves windows against the shared slot calendar. Reservations for
// one doctor-date are serialized through the locker; the transactional
// conditional update in the repository keeps the transition all-or-nothing
// even without it.
type Store struct {
	repo   Repository
	locker redisclient.Locker
	now    func() time.Time
}

func NewStore(repo Repository, locker redisclient.Locker) *Store {
	return &Store{
		repo:   repo,
		locker: locker,
		now:    time.Now,
	}
}

// FreeSlots returns the current free-slot view for window composition.
func (s *Store) FreeSlots(ctx context.Context, doctorID, location, dateFrom string) ([]AtomicSlot, error) {
	slots, err := s.repo.ListFreeSlots(ctx, doctorID, location, dateFrom)
	if err != nil {
		return nil, fmt.Errorf("list free slots: %w", err)
	}
	return slots, nil
}

// Booking loads one confirmed booking by appointment id.
func (s *Store) Booking(ctx context.Context, appointmentID string) (*Booking, error) {
	return s.repo.GetBooking(ctx, appointmentID)
}

// Reserve atomically books every composing slot of the window for the
// patient. Exactly one of two concurrent overlapping reservations succeeds;
// the other observes ErrSlotConflict with no slot mutated.
func (s *Store) Reserve(ctx context.Context, w Window, patientID string) (*Booking, error) {
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	var booking *Booking

	err := s.locker.WithScheduleLock(ctx, w.DoctorID, w.Date, func(lockCtx context.Context) error {
		appointmentID := AppointmentID(s.now())

		b, err := s.repo.ReserveWindow(lockCtx, w, appointmentID, patientID)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			// A contender loses the lock race with a retryable busy, not a
			// conflict: the window may still be free once the holder is done.
			// Retrying after the winner commits yields ErrSlotConflict from
			// the conditional update.
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	return booking, nil
}

func validateWindow(w Window) error {
	if w.DoctorID == "" || w.Date == "" || len(w.Slots) == 0 {
		return ErrWindowMismatch
	}
	if w.Slots[0].StartTime != w.StartTime || w.Slots[len(w.Slots)-1].EndTime != w.EndTime {
		return ErrWindowMismatch
	}

	for i, ref := range w.Slots {
		if ref.DoctorID != w.DoctorID || ref.Date != w.Date {
			return ErrWindowMismatch
		}

		start, err := parseClock(ref.StartTime)
		if err != nil {
			return ErrWindowMismatch
		}
		end, err := parseClock(ref.EndTime)
		if err != nil {
			return ErrWindowMismatch
		}
		if end.Sub(start) != SlotWidth {
			return ErrWindowMismatch
		}

		if i > 0 && w.Slots[i-1].EndTime != ref.StartTime {
			return ErrWindowMismatch
		}
	}

	return nil
}

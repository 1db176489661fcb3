package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRows = []string{
	"appointment_id", "doctor_id", "date", "start_time", "end_time", "patient_id", "status", "created_at",
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PgRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewPgRepository(mock)
}

func TestPgReserveWindow_CommitsSlotsAndBooking(t *testing.T) {
	mock, repo := newMockRepo(t)

	w, err := BuildWindow("D001", "2025-01-10", "09:00", "10:00")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointment_slots").
		WithArgs("A20250110091542", "D001", "2025-01-10", []string{"09:00", "09:30"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("A20250110091542", "D001", "2025-01-10", "09:00", "10:00", "P001").
		WillReturnRows(pgxmock.NewRows(bookingRows).AddRow(
			"A20250110091542", "D001", "2025-01-10", "09:00", "10:00", "P001", BookingConfirmed, time.Now(),
		))
	mock.ExpectCommit()

	b, err := repo.ReserveWindow(context.Background(), w, "A20250110091542", "P001")
	require.NoError(t, err)

	assert.Equal(t, "A20250110091542", b.AppointmentID)
	assert.Equal(t, BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgReserveWindow_PartialUpdateIsAConflict(t *testing.T) {
	mock, repo := newMockRepo(t)

	w, err := BuildWindow("D001", "2025-01-10", "09:00", "10:00")
	require.NoError(t, err)

	// Only one of the two composing slots was still free.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointment_slots").
		WithArgs("A20250110091542", "D001", "2025-01-10", []string{"09:00", "09:30"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectRollback()

	_, err = repo.ReserveWindow(context.Background(), w, "A20250110091542", "P001")
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgReserveWindow_DuplicateAppointmentID(t *testing.T) {
	mock, repo := newMockRepo(t)

	w, err := BuildWindow("D001", "2025-01-10", "11:00", "11:30")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointment_slots").
		WithArgs("A20250110091542", "D001", "2025-01-10", []string{"11:00"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("A20250110091542", "D001", "2025-01-10", "11:00", "11:30", "P001").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = repo.ReserveWindow(context.Background(), w, "A20250110091542", "P001")
	assert.ErrorIs(t, err, ErrAppointmentIDTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgGetBooking_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT .+ FROM bookings").
		WithArgs("A00000000000000").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetBooking(context.Background(), "A00000000000000")
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgListFreeSlots(t *testing.T) {
	mock, repo := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM appointment_slots").
		WithArgs("D001", "Velachery", "2025-01-10").
		WillReturnRows(pgxmock.NewRows([]string{
			"doctor_id", "doctor_name", "location", "date", "start_time", "end_time", "status", "appointment_id", "created_at", "updated_at",
		}).AddRow(
			"D001", "Dr. Rao", "Velachery", "2025-01-10", "09:00", "09:30", SlotFree, nil, now, now,
		))

	slots, err := repo.ListFreeSlots(context.Background(), "D001", "Velachery", "2025-01-10")
	require.NoError(t, err)

	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Nil(t, slots[0].AppointmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

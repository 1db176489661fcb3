package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the slice of pgxpool.Pool the repository needs. Declared here so
// tests can substitute a mock.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PgRepository struct {
	pool Pool
}

func NewPgRepository(pool Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanSlot(row pgx.Row) (*AtomicSlot, error) {
	var s AtomicSlot

	err := row.Scan(
		&s.DoctorID,
		&s.DoctorName,
		&s.Location,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.AppointmentID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.AppointmentID,
		&b.DoctorID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.PatientID,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *PgRepository) ListFreeSlots(ctx context.Context, doctorID, location, dateFrom string) ([]AtomicSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, doctor_name, location, date, start_time, end_time, status, appointment_id, created_at, updated_at
		FROM appointment_slots
		WHERE doctor_id = $1
		  AND lower(location) = lower($2)
		  AND status = 'free'
		  AND date >= $3
		ORDER BY date, start_time
	`, doctorID, location, dateFrom)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AtomicSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ReserveWindow marks all composing slots booked and records the booking in
// one transaction. The conditional update (status = 'free') plus the
// affected-rows check is the conflict detection; if any slot was taken since
// the caller composed the window, nothing is committed.
func (r *PgRepository) ReserveWindow(ctx context.Context, w Window, appointmentID, patientID string) (*Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	starts := make([]string, 0, len(w.Slots))
	for _, ref := range w.Slots {
		starts = append(starts, ref.StartTime)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE appointment_slots
		SET status = 'booked',
		    appointment_id = $1,
		    updated_at = now()
		WHERE doctor_id = $2
		  AND date = $3
		  AND start_time = ANY($4)
		  AND status = 'free'
	`, appointmentID, w.DoctorID, w.Date, starts)
	if err != nil {
		return nil, fmt.Errorf("mark slots booked: %w", err)
	}
	if tag.RowsAffected() != int64(len(starts)) {
		return nil, ErrSlotConflict
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (appointment_id, doctor_id, date, start_time, end_time, patient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'confirmed', now())
		RETURNING appointment_id, doctor_id, date, start_time, end_time, patient_id, status, created_at
	`, appointmentID, w.DoctorID, w.Date, w.StartTime, w.EndTime, patientID)

	booking, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAppointmentIDTaken
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reserve tx: %w", err)
	}

	return booking, nil
}

func (r *PgRepository) GetBooking(ctx context.Context, appointmentID string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT appointment_id, doctor_id, date, start_time, end_time, patient_id, status, created_at
		FROM bookings
		WHERE appointment_id = $1
	`, appointmentID)
	return scanBooking(row)
}

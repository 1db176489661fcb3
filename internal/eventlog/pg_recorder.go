package eventlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the slice of pgxpool.Pool the recorder needs. Declared here so
// tests can substitute a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PgRecorder struct {
	pool Pool
}

func NewPgRecorder(pool Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

func (r *PgRecorder) Record(ctx context.Context, ev Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminder_events (appointment_id, event_type, channel, recipient, status,
			form_filled, visit_confirmed, cancel_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, ev.AppointmentID, ev.EventType, ev.Channel, ev.Recipient, ev.Status,
		ev.FormFilled, ev.VisitConfirmed, ev.CancelReason)
	if err != nil {
		return fmt.Errorf("insert reminder event: %w", err)
	}

	return nil
}

func (r *PgRecorder) ListQueued(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, event_type, channel, recipient, status,
		       form_filled, visit_confirmed, cancel_reason, created_at
		FROM reminder_events
		WHERE status = 'queued'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRecorder) MarkSent(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reminder_events
		SET status = 'sent'
		WHERE id = $1
		  AND status = 'queued'
	`, id)
	if err != nil {
		return fmt.Errorf("mark event sent: %w", err)
	}

	return nil
}

func scanEvent(row pgx.Row) (*Event, error) {
	var ev Event

	err := row.Scan(
		&ev.ID,
		&ev.AppointmentID,
		&ev.EventType,
		&ev.Channel,
		&ev.Recipient,
		&ev.Status,
		&ev.FormFilled,
		&ev.VisitConfirmed,
		&ev.CancelReason,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &ev, nil
}

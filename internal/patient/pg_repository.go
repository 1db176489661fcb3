package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool used by the repository. Tests can
// substitute a mock.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	pool Querier
}

func NewPgRepository(pool Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

const recordColumns = `patient_id, name, dob, email, phone, preferred_doctor_id, is_returning,
		ins_carrier, ins_member_id, ins_group, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record

	err := row.Scan(
		&r.PatientID,
		&r.Name,
		&r.DOB,
		&r.Email,
		&r.Phone,
		&r.PreferredDoctorID,
		&r.IsReturning,
		&r.InsCarrier,
		&r.InsMemberID,
		&r.InsGroup,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &r, nil
}

func (r *PgRepository) FindByIdentity(ctx context.Context, name, dob string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM patients
		WHERE lower(name) = lower($1) AND dob = $2
	`, name, dob)
	return scanRecord(row)
}

func (r *PgRepository) Create(ctx context.Context, rec Record) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (patient_id, name, dob, email, phone, preferred_doctor_id, is_returning,
			ins_carrier, ins_member_id, ins_group, created_at, updated_at)
		VALUES ('P' || lpad(nextval('patient_id_seq')::text, 3, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+recordColumns+`
	`, rec.Name, rec.DOB, rec.Email, rec.Phone, rec.PreferredDoctorID, rec.IsReturning,
		rec.InsCarrier, rec.InsMemberID, rec.InsGroup)

	created, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) MarkReturning(ctx context.Context, patientID, preferredDoctorID string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET is_returning = true,
		    preferred_doctor_id = $2,
		    updated_at = now()
		WHERE patient_id = $1
		RETURNING `+recordColumns+`
	`, patientID, preferredDoctorID)
	return scanRecord(row)
}

func (r *PgRepository) UpdateInsurance(ctx context.Context, patientID, carrier, memberID, group string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET ins_carrier = COALESCE(NULLIF($2, ''), ins_carrier),
		    ins_member_id = COALESCE(NULLIF($3, ''), ins_member_id),
		    ins_group = COALESCE(NULLIF($4, ''), ins_group),
		    updated_at = now()
		WHERE patient_id = $1
	`, patientID, carrier, memberID, group)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

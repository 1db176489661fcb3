package patient

import (
	"context"
	"errors"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrDuplicateIdentity = errors.New("patient identity already registered")
)

// Repository contains all DB interactions needed by the directory.
type Repository interface {
	// FindByIdentity matches name case-insensitively and dob exactly.
	FindByIdentity(ctx context.Context, name, dob string) (*Record, error)

	// Create assigns the next sequential patient ID. Returns
	// ErrDuplicateIdentity if a concurrent create won the (name, dob) key.
	Create(ctx context.Context, rec Record) (*Record, error)

	// MarkReturning flips is_returning and overrides the preferred doctor.
	MarkReturning(ctx context.Context, patientID, preferredDoctorID string) (*Record, error)

	// UpdateInsurance overwrites the insurance fields that are non-empty.
	UpdateInsurance(ctx context.Context, patientID, carrier, memberID, group string) error
}

package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingIdentity = errors.New("name, dob and doctor_id are required")
)

// Directory resolves an incoming (name, dob) pair to a patient record,
// creating one on first encounter. The returning flag on the result drives
// appointment duration selection downstream.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// Resolve looks up the patient by case-insensitive name and exact dob.
// A known patient is marked returning and has the preferred doctor
// overridden; an unknown one is created with a fresh sequential ID.
// The backing store is durably updated before returning either way.
func (d *Directory) Resolve(ctx context.Context, req ResolveRequest) (*Record, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.DOB) == "" || strings.TrimSpace(req.DoctorID) == "" {
		return nil, ErrMissingIdentity
	}

	existing, err := d.repo.FindByIdentity(ctx, req.Name, req.DOB)
	if err != nil && !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if existing != nil {
		updated, err := d.repo.MarkReturning(ctx, existing.PatientID, req.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("update returning patient: %w", err)
		}
		return updated, nil
	}

	created, err := d.repo.Create(ctx, Record{
		Name:              req.Name,
		DOB:               req.DOB,
		Email:             req.Email,
		Phone:             req.Phone,
		PreferredDoctorID: req.DoctorID,
		IsReturning:       false,
	})
	if err == nil {
		return created, nil
	}

	// A concurrent identical request won the insert race. The unique
	// (lower(name), dob) index guarantees a single patient_id, so fall
	// back to the returning-patient path against the winner's row.
	if errors.Is(err, ErrDuplicateIdentity) {
		winner, findErr := d.repo.FindByIdentity(ctx, req.Name, req.DOB)
		if findErr != nil {
			return nil, fmt.Errorf("reload patient after insert race: %w", findErr)
		}
		updated, updErr := d.repo.MarkReturning(ctx, winner.PatientID, req.DoctorID)
		if updErr != nil {
			return nil, fmt.Errorf("update patient after insert race: %w", updErr)
		}
		return updated, nil
	}

	return nil, fmt.Errorf("create patient: %w", err)
}

// RecordInsurance persists insurance fields supplied at booking time.
// Empty fields leave the stored values untouched.
func (d *Directory) RecordInsurance(ctx context.Context, patientID, carrier, memberID, group string) error {
	if err := d.repo.UpdateInsurance(ctx, patientID, carrier, memberID, group); err != nil {
		return fmt.Errorf("update insurance: %w", err)
	}
	return nil
}

package patient

import (
	"time"
)

// Record is one row of the patient directory. Identity is (name, dob) with
// case-insensitive name matching; patient IDs are sequential and never reused.
type Record struct {
	PatientID         string
	Name              string
	DOB               string // YYYY-MM-DD
	Email             string
	Phone             string
	PreferredDoctorID string
	IsReturning       bool
	InsCarrier        *string
	InsMemberID       *string
	InsGroup          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ResolveRequest carries the identity and contact fields collected from the caller.
type ResolveRequest struct {
	Name     string
	DOB      string
	DoctorID string
	Location string
	Email    string
	Phone    string
}

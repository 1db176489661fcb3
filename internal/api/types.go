package api

import (
	"time"
)

type WindowResponse struct {
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name,omitempty"`
	Location   string `json:"location,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type AvailabilityResponse struct {
	PatientID   string           `json:"patient_id"`
	IsReturning bool             `json:"is_returning"`
	DurationMin int              `json:"duration_min"`
	Windows     []WindowResponse `json:"windows"`
}

type CreateBookingRequest struct {
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	DoctorID  string `json:"doctor_id"`
	Location  string `json:"location"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	InsCarrier  string `json:"ins_carrier,omitempty"`
	InsMemberID string `json:"ins_member_id,omitempty"`
	InsGroup    string `json:"ins_group,omitempty"`
}

type BookingResponse struct {
	AppointmentID string    `json:"appointment_id"`
	DoctorID      string    `json:"doctor_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	PatientID     string    `json:"patient_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`

	State    string   `json:"state,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

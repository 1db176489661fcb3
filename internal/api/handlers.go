package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/appointment-scheduling/internal/booking"
	"github.com/clinicdesk/appointment-scheduling/internal/patient"
	"github.com/clinicdesk/appointment-scheduling/internal/schedule"
)

func listAvailabilityHandler(engine *booking.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		avail, err := engine.ListAvailability(r.Context(), booking.AvailabilityRequest{
			ResolveRequest: patient.ResolveRequest{
				Name:     q.Get("name"),
				DOB:      q.Get("dob"),
				DoctorID: q.Get("doctor_id"),
				Location: q.Get("location"),
				Email:    q.Get("email"),
				Phone:    q.Get("phone"),
			},
			DateFrom: q.Get("date_from"),
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := AvailabilityResponse{
			PatientID:   avail.Patient.PatientID,
			IsReturning: avail.Patient.IsReturning,
			DurationMin: avail.DurationMin,
			Windows:     make([]WindowResponse, 0, len(avail.Windows)),
		}
		for _, win := range avail.Windows {
			resp.Windows = append(resp.Windows, WindowResponse{
				DoctorID:   win.DoctorID,
				DoctorName: win.DoctorName,
				Location:   win.Location,
				Date:       win.Date,
				StartTime:  win.StartTime,
				EndTime:    win.EndTime,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createBookingHandler(engine *booking.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		conf, err := engine.Book(r.Context(), booking.BookingRequest{
			ResolveRequest: patient.ResolveRequest{
				Name:     req.Name,
				DOB:      req.DOB,
				DoctorID: req.DoctorID,
				Location: req.Location,
				Email:    req.Email,
				Phone:    req.Phone,
			},
			Date:        req.Date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			InsCarrier:  req.InsCarrier,
			InsMemberID: req.InsMemberID,
			InsGroup:    req.InsGroup,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, bookingResponse(conf))
	}
}

func getBookingHandler(engine *booking.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		b, err := engine.Booking(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BookingResponse{
			AppointmentID: b.AppointmentID,
			DoctorID:      b.DoctorID,
			Date:          b.Date,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			PatientID:     b.PatientID,
			Status:        string(b.Status),
			CreatedAt:     b.CreatedAt,
		})
	}
}

func bookingResponse(conf *booking.Confirmation) BookingResponse {
	b := conf.Booking
	return BookingResponse{
		AppointmentID: b.AppointmentID,
		DoctorID:      b.DoctorID,
		Date:          b.Date,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		PatientID:     b.PatientID,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		State:         string(conf.State),
		Warnings:      conf.Warnings,
	}
}

// handleBookingError maps the engine's error taxonomy onto HTTP statuses so
// callers can tell "re-enter identity data" apart from "re-pick a slot".
func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patient.ErrMissingIdentity):
		writeError(w, http.StatusBadRequest, "missing_identity", err.Error())
	case errors.Is(err, booking.ErrInvalidInsurance):
		writeError(w, http.StatusBadRequest, "invalid_insurance", err.Error())
	case errors.Is(err, schedule.ErrWindowMismatch):
		writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
	case errors.Is(err, schedule.ErrBadDuration):
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, schedule.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, schedule.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "schedule is currently being booked, please retry shortly")
	case errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, schedule.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Details: details,
	})
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/clinicdesk/appointment-scheduling/internal/eventlog"
	"github.com/clinicdesk/appointment-scheduling/internal/insurance"
	"github.com/clinicdesk/appointment-scheduling/internal/notify"
	"github.com/clinicdesk/appointment-scheduling/internal/patient"
	"github.com/clinicdesk/appointment-scheduling/internal/schedule"
)

// SessionState tracks one booking session through its lifecycle. Reserved
// and Notified are terminal successes; Failed sessions may be retried from
// Collecting with a fresh availability query.
type SessionState string

const (
	StateCollecting        SessionState = "collecting"
	StateSlotsOffered      SessionState = "slots_offered"
	StateAwaitingSelection SessionState = "awaiting_selection"
	StateReserved          SessionState = "reserved"
	StateNotified          SessionState = "notified"
	StateFailed            SessionState = "failed"
)

var (
	ErrInvalidInsurance = errors.New("invalid insurance details")
)

// Engine orchestrates a booking session: resolve patient, compose candidate
// windows, reserve the caller's selection, then drive the notification and
// reminder pipeline. The reservation is authoritative; sink failures after
// it are warnings, never booking failures.
type Engine struct {
	directory *patient.Directory
	store     *schedule.Store
	notifier  notify.Notifier
	recorder  eventlog.Recorder
	now       func() time.Time
}

func NewEngine(directory *patient.Directory, store *schedule.Store, notifier notify.Notifier, recorder eventlog.Recorder) *Engine {
	return &Engine{
		directory: directory,
		store:     store,
		notifier:  notifier,
		recorder:  recorder,
		now:       time.Now,
	}
}

type AvailabilityRequest struct {
	patient.ResolveRequest
	DateFrom string // YYYY-MM-DD, defaults to today
}

type Availability struct {
	Patient     *patient.Record
	DurationMin int
	Windows     []schedule.Window
	State       SessionState
}

// ListAvailability resolves the patient, derives the visit duration from the
// returning flag and composes candidate windows. An empty window list is a
// valid result meaning no availability.
func (e *Engine) ListAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	rec, err := e.directory.Resolve(ctx, req.ResolveRequest)
	if err != nil {
		return nil, err
	}

	durationMin := schedule.DurationFor(rec.IsReturning)

	dateFrom := req.DateFrom
	if dateFrom == "" {
		dateFrom = e.now().Format("2006-01-02")
	}

	slots, err := e.store.FreeSlots(ctx, req.DoctorID, req.Location, dateFrom)
	if err != nil {
		return nil, err
	}

	windows, err := schedule.CandidateWindows(slots, durationMin)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Patient:     rec,
		DurationMin: durationMin,
		Windows:     windows,
		State:       StateSlotsOffered,
	}, nil
}

type BookingRequest struct {
	patient.ResolveRequest
	Date      string
	StartTime string
	EndTime   string

	InsCarrier  string
	InsMemberID string
	InsGroup    string
}

type Confirmation struct {
	Booking  *schedule.Booking
	Patient  *patient.Record
	State    SessionState
	Warnings []string
}

// Book reserves the caller-selected window for the resolved patient. The
// window need not come from a prior offer; the reservation itself is the
// authoritative availability check. A conflict is reported distinctly from
// identity errors so the caller knows whether to re-pick a slot or re-enter
// identity data.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (*Confirmation, error) {
	rec, err := e.directory.Resolve(ctx, req.ResolveRequest)
	if err != nil {
		return nil, err
	}

	if req.InsCarrier != "" || req.InsMemberID != "" || req.InsGroup != "" {
		if !insurance.Validate(req.InsCarrier, req.InsMemberID, req.InsGroup) {
			return nil, ErrInvalidInsurance
		}
		if err := e.directory.RecordInsurance(ctx, rec.PatientID, req.InsCarrier, req.InsMemberID, req.InsGroup); err != nil {
			return nil, err
		}
	}

	w, err := schedule.BuildWindow(req.DoctorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	b, err := e.store.Reserve(ctx, w, rec.PatientID)
	if err != nil {
		return nil, err
	}

	warnings := e.dispatch(ctx, rec, b)

	state := StateNotified
	if len(warnings) > 0 {
		state = StateReserved
	}

	return &Confirmation{
		Booking:  b,
		Patient:  rec,
		State:    state,
		Warnings: warnings,
	}, nil
}

// Booking loads one confirmed booking by appointment id.
func (e *Engine) Booking(ctx context.Context, appointmentID string) (*schedule.Booking, error) {
	return e.store.Booking(ctx, appointmentID)
}

var formTemplates = []string{
	"patient_intake_form_template.txt",
	"hipaa_consent_form_template.txt",
}

// dispatch runs the post-reservation pipeline: confirmation email and SMS,
// intake forms, lifecycle events and queued reminders. Every failure is
// collected as a warning and logged; none affects the committed booking.
func (e *Engine) dispatch(ctx context.Context, rec *patient.Record, b *schedule.Booking) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("post-booking warning appointment_id=%s: %s", b.AppointmentID, msg)
		warnings = append(warnings, msg)
	}

	subject := fmt.Sprintf("Appointment Confirmation %s", b.AppointmentID)
	body := fmt.Sprintf("Dear %s, your appointment is confirmed on %s from %s to %s. Appointment ID: %s.",
		rec.Name, b.Date, b.StartTime, b.EndTime, b.AppointmentID)

	confirmed := false
	if err := e.notifier.Notify(ctx, notify.Message{
		Recipient: rec.Email,
		Channel:   notify.ChannelEmail,
		Subject:   subject,
		Body:      body,
	}); err != nil {
		warn("send confirmation email: %v", err)
	} else {
		confirmed = true
	}
	if err := e.notifier.Notify(ctx, notify.Message{
		Recipient: rec.Phone,
		Channel:   notify.ChannelSMS,
		Body:      body,
	}); err != nil {
		warn("send confirmation sms: %v", err)
	} else {
		confirmed = true
	}

	e.record(ctx, warn, eventlog.Event{
		AppointmentID: b.AppointmentID,
		EventType:     eventlog.EventBookingConfirmed,
		Channel:       string(notify.ChannelEmail),
		Recipient:     rec.Email,
		Status:        deliveryStatus(confirmed),
	})

	formsSent := false
	for _, form := range formTemplates {
		if err := e.notifier.Notify(ctx, notify.Message{
			Recipient: rec.Email,
			Channel:   notify.ChannelEmail,
			Subject:   fmt.Sprintf("Forms for Appointment %s", b.AppointmentID),
			Body:      fmt.Sprintf("Please complete the attached form: %s and reply before your visit.", form),
		}); err != nil {
			warn("send form %s: %v", form, err)
		} else {
			formsSent = true
		}
	}
	e.record(ctx, warn, eventlog.Event{
		AppointmentID: b.AppointmentID,
		EventType:     eventlog.EventFormsSent,
		Channel:       string(notify.ChannelEmail),
		Recipient:     rec.Email,
		Status:        deliveryStatus(formsSent),
	})

	e.queueReminders(ctx, warn, rec, b)

	return warnings
}

func deliveryStatus(delivered bool) string {
	if delivered {
		return eventlog.StatusSent
	}
	return eventlog.StatusFailed
}

// queueReminders enqueues the three reminder rounds on both channels. The
// second round tracks form completion, the third additionally tracks visit
// confirmation; the reminder worker dispatches them later.
func (e *Engine) queueReminders(ctx context.Context, warn func(string, ...any), rec *patient.Record, b *schedule.Booking) {
	notYet := false

	rounds := []eventlog.Event{
		{EventType: eventlog.EventReminder1},
		{EventType: eventlog.EventReminder2, FormFilled: &notYet},
		{EventType: eventlog.EventReminder3, FormFilled: &notYet, VisitConfirmed: &notYet},
	}

	for _, round := range rounds {
		for _, target := range []struct {
			channel   notify.Channel
			recipient string
		}{
			{notify.ChannelEmail, rec.Email},
			{notify.ChannelSMS, rec.Phone},
		} {
			ev := round
			ev.AppointmentID = b.AppointmentID
			ev.Channel = string(target.channel)
			ev.Recipient = target.recipient
			ev.Status = eventlog.StatusQueued
			e.record(ctx, warn, ev)
		}
	}
}

func (e *Engine) record(ctx context.Context, warn func(string, ...any), ev eventlog.Event) {
	if err := e.recorder.Record(ctx, ev); err != nil {
		warn("record %s event: %v", ev.EventType, err)
	}
}

package booking

import (
	"context"
	"fmt"
	"log"

	"github.com/clinicdesk/appointment-scheduling/internal/eventlog"
	"github.com/clinicdesk/appointment-scheduling/internal/notify"
)

// ReminderDispatcher drains queued reminder events and delivers them through
// the notification sink. Delivery failures leave the event queued for the
// next run; retry policy beyond that belongs to the transport.
type ReminderDispatcher struct {
	recorder eventlog.Recorder
	notifier notify.Notifier
	batch    int
}

func NewReminderDispatcher(recorder eventlog.Recorder, notifier notify.Notifier) *ReminderDispatcher {
	return &ReminderDispatcher{
		recorder: recorder,
		notifier: notifier,
		batch:    100,
	}
}

// DispatchQueued sends one batch of queued reminders and marks the delivered
// ones sent. Returns the number delivered.
func (d *ReminderDispatcher) DispatchQueued(ctx context.Context) (int, error) {
	queued, err := d.recorder.ListQueued(ctx, d.batch)
	if err != nil {
		return 0, fmt.Errorf("list queued reminders: %w", err)
	}

	sent := 0
	for _, ev := range queued {
		msg := notify.Message{
			Recipient: ev.Recipient,
			Channel:   notify.Channel(ev.Channel),
			Subject:   fmt.Sprintf("Appointment Reminder %s", ev.AppointmentID),
			Body: fmt.Sprintf("This is a reminder for your appointment %s. Please complete any outstanding forms before your visit.",
				ev.AppointmentID),
		}

		if err := d.notifier.Notify(ctx, msg); err != nil {
			log.Printf("failed to deliver %s for appointment %s via %s: %v", ev.EventType, ev.AppointmentID, ev.Channel, err)
			continue
		}

		if err := d.recorder.MarkSent(ctx, ev.ID); err != nil {
			log.Printf("failed to mark reminder %d sent: %v", ev.ID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

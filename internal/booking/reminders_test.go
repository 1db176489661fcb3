package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/appointment-scheduling/internal/eventlog"
	"github.com/clinicdesk/appointment-scheduling/internal/notify"
)

func queuedReminder(id int64, eventType, channel, recipient string) eventlog.Event {
	return eventlog.Event{
		ID:            id,
		AppointmentID: "A20250110091542",
		EventType:     eventType,
		Channel:       channel,
		Recipient:     recipient,
		Status:        eventlog.StatusQueued,
	}
}

func TestDispatchQueued_DeliversAndMarksSent(t *testing.T) {
	recorder := &stubRecorder{events: []eventlog.Event{
		queuedReminder(1, eventlog.EventReminder1, "email", "alice@example.com"),
		queuedReminder(2, eventlog.EventReminder1, "sms", "9000000001"),
	}}
	notifier := &stubNotifier{}

	dispatcher := NewReminderDispatcher(recorder, notifier)

	sent, err := dispatcher.DispatchQueued(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.ChannelEmail, notifier.sent[0].Channel)
	assert.Contains(t, notifier.sent[0].Subject, "A20250110091542")
	assert.Equal(t, notify.ChannelSMS, notifier.sent[1].Channel)

	queued, err := recorder.ListQueued(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, queued, "delivered reminders must leave the queue")
}

func TestDispatchQueued_FailureLeavesEventQueued(t *testing.T) {
	recorder := &stubRecorder{events: []eventlog.Event{
		queuedReminder(1, eventlog.EventReminder2, "email", "alice@example.com"),
	}}
	notifier := &stubNotifier{fail: true}

	dispatcher := NewReminderDispatcher(recorder, notifier)

	sent, err := dispatcher.DispatchQueued(context.Background())
	require.NoError(t, err, "delivery failures are logged, not returned")
	assert.Zero(t, sent)

	queued, err := recorder.ListQueued(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, queued, 1, "a failed reminder stays queued for the next run")
}

func TestDispatchQueued_EmptyQueue(t *testing.T) {
	dispatcher := NewReminderDispatcher(&stubRecorder{}, &stubNotifier{})

	sent, err := dispatcher.DispatchQueued(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

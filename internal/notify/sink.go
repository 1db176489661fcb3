package notify

import (
	"context"
	"fmt"
	"time"
)

// Sink fans messages out to the channel transports. It is the concrete
// Notifier wired in production.
type Sink struct {
	email   *SMTPSender
	sms     *WebhookSMSSender
	timeout time.Duration
}

func NewSink(email *SMTPSender, sms *WebhookSMSSender, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{
		email:   email,
		sms:     sms,
		timeout: timeout,
	}
}

func (s *Sink) Notify(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch msg.Channel {
	case ChannelEmail:
		if s.email == nil {
			return nil
		}
		return s.email.Send(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		if s.sms == nil {
			return nil
		}
		return s.sms.Send(ctx, msg.Recipient, msg.Body)
	default:
		return fmt.Errorf("unknown channel %q", msg.Channel)
	}
}

// Noop drops every message. Used when no transport is configured.
type Noop struct{}

func (Noop) Notify(_ context.Context, _ Message) error {
	return nil
}

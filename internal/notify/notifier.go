package notify

import (
	"context"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound confirmation, form or reminder notice.
type Message struct {
	Recipient string
	Channel   Channel
	Subject   string
	Body      string
}

// Notifier delivers messages to patients. Delivery errors are non-fatal to
// the booking that triggered them.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

package notify

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentSMTPServer accepts connections and never sends the greeting.
func silentSMTPServer(t *testing.T) (host, port string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestSMTPSender_SendIsBoundedByContextDeadline(t *testing.T) {
	host, port := silentSMTPServer(t)
	sender := NewSMTPSender(host, port, "no-reply@clinicdesk.local")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sender.Send(ctx, "alice@example.com", "Appointment Confirmation", "See you soon.")
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, 2*time.Second, "a stalled SMTP server must not block past the deadline")
}

func TestSink_EmailDeliveryIsBoundedByTimeout(t *testing.T) {
	host, port := silentSMTPServer(t)
	sink := NewSink(NewSMTPSender(host, port, "no-reply@clinicdesk.local"), nil, 200*time.Millisecond)

	start := time.Now()
	err := sink.Notify(context.Background(), Message{
		Channel:   ChannelEmail,
		Recipient: "alice@example.com",
		Subject:   "Appointment Confirmation",
		Body:      "See you soon.",
	})
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, 2*time.Second)
}

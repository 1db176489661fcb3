package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSMSSender_PostsPayload(t *testing.T) {
	var (
		gotAuth    string
		gotPayload map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewWebhookSMSSender(srv.URL, "secret-token")

	err := sender.Send(context.Background(), "9000000001", "your appointment is confirmed")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "9000000001", gotPayload["to"])
	assert.Equal(t, "your appointment is confirmed", gotPayload["body"])
}

func TestWebhookSMSSender_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSMSSender(srv.URL, "")

	err := sender.Send(context.Background(), "9000000001", "hello")
	assert.Error(t, err)
}

func TestWebhookSMSSender_UnconfiguredURL(t *testing.T) {
	sender := NewWebhookSMSSender("", "")

	err := sender.Send(context.Background(), "9000000001", "hello")
	assert.Error(t, err)
}

package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roombook/config"
	"roombook/infras/notification"
	"roombook/infras/otel/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Notify(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := notification.NewWithClient(notification.Config{
		ServiceEndpoint:       server.URL,
		SenderIdentity:        "rooms@example.com",
		AdminDistributionList: []string{"admin@example.com"},
		RatePerSecond:         100,
	}, server.Client(), mocks.NewOtel())

	err := notifier.Notify(context.Background(), notification.Message{
		To:      []string{"ayu@example.com"},
		Subject: "Room booked",
		Body:    "Meeting Room A on 2024-01-10 09:00-10:00",
		Links:   map[string]string{"calendar": "https://cdn.example.com/calendars/b-1.ics"},
	})
	require.NoError(t, err)

	assert.Equal(t, "rooms@example.com", received["from"])
	assert.Equal(t, []any{"ayu@example.com"}, received["to"])
	assert.Equal(t, []any{"admin@example.com"}, received["cc"])
	assert.Equal(t, "Room booked", received["subject"])
}

func TestNotifier_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	t.Run("upstream error", func(t *testing.T) {
		notifier := notification.NewWithClient(notification.Config{ServiceEndpoint: server.URL}, server.Client(), mocks.NewOtel())

		err := notifier.Notify(context.Background(), notification.Message{To: []string{"ayu@example.com"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("not configured", func(t *testing.T) {
		notifier := notification.New(&config.Config{}, mocks.NewOtel())

		err := notifier.Notify(context.Background(), notification.Message{To: []string{"ayu@example.com"}})
		assert.ErrorIs(t, err, notification.ErrNotConfigured)
	})

	t.Run("no recipients", func(t *testing.T) {
		notifier := notification.NewWithClient(notification.Config{ServiceEndpoint: server.URL}, server.Client(), mocks.NewOtel())

		err := notifier.Notify(context.Background(), notification.Message{})
		assert.ErrorIs(t, err, notification.ErrNoRecipients)
	})
}

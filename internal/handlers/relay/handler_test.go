package relay_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/relay/service"
	"roombook/internal/handlers/relay"
)

func newServer(t *testing.T) *httpexpect.Expect {
	t.Helper()

	otel := otelMocks.NewOtel()
	handler := relay.New(service.New(&config.Config{}, otel), otel)

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return httpexpect.Default(t, server.URL)
}

func TestHandler_Relay(t *testing.T) {
	var received string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer upstream.Close()

	e := newServer(t)

	e.POST("/v1/relay").
		WithJSON(map[string]any{
			"url":  upstream.URL,
			"body": map[string]any{"to": "dewi@example.com"},
		}).
		Expect().
		Status(http.StatusCreated).
		HasContentType("application/json").
		JSON().Object().Value("id").IsEqual("msg-1")

	assert.Equal(t, "to=dewi%40example.com", received)
}

func TestHandler_Relay_Validation(t *testing.T) {
	e := newServer(t)

	e.POST("/v1/relay").
		WithJSON(map[string]any{"method": "POST"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").IsEqual("url is required")

	e.POST("/v1/relay").
		WithJSON(map[string]any{"url": "http://example.com", "method": "TRACE"}).
		Expect().
		Status(http.StatusBadRequest)

	e.POST("/v1/relay").
		WithText("not json").
		Expect().
		Status(http.StatusBadRequest)
}

func TestHandler_Relay_Preflight(t *testing.T) {
	e := newServer(t)

	e.OPTIONS("/v1/relay").
		WithHeader("Origin", "https://rooms.example.com").
		WithHeader("Access-Control-Request-Method", http.MethodPost).
		WithHeader("Access-Control-Request-Headers", "Content-Type").
		Expect().
		Status(http.StatusOK).
		Header("Access-Control-Allow-Origin").IsEqual("*")
}

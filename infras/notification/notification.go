package notification

//go:generate go run go.uber.org/mock/mockgen -source=./notification.go -destination=./mocks/notification_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/shared/constant"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	otelScopeName      = "notification"
	maxErrorBodyBytes  = 4 << 10
	defaultTimeout     = 10 * time.Second
	defaultRatePerSec  = 1.0
	otelAttrRecipients = "notification.recipients"
)

var (
	ErrNotConfigured = errors.New("notification service endpoint is not configured")
	ErrNoRecipients  = errors.New("notification has no recipients")
)

// Config identifies the notification service and who is told about bookings.
type Config struct {
	ServiceEndpoint       string
	SenderIdentity        string
	AdminDistributionList []string
	Timeout               time.Duration
	RatePerSecond         float64
}

// ConfigFrom extracts the notification settings from the service configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ServiceEndpoint:       cfg.Notification.ServiceEndpoint,
		SenderIdentity:        cfg.Notification.SenderIdentity,
		AdminDistributionList: cfg.Notification.AdminDistributionList,
		Timeout:               time.Duration(cfg.Notification.TimeoutSeconds) * time.Second,
		RatePerSecond:         cfg.Notification.RatePerSecond,
	}
}

// Message is a single notice. The admin distribution list is always copied.
type Message struct {
	To      []string
	Subject string
	Body    string
	// Links are attached as-is, e.g. the calendar file of a booking.
	Links map[string]string
}

type payload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Cc      []string          `json:"cc,omitempty"`
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Links   map[string]string `json:"links,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

type notifierImpl struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	otel    otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Notifier {
	return NewWithClient(ConfigFrom(cfg), &http.Client{}, otel)
}

// NewWithClient builds a notifier over the given HTTP client. Sends are spaced out
// to Config.RatePerSecond.
func NewWithClient(conf Config, client *http.Client, otel otel.Otel) Notifier {
	if conf.Timeout <= 0 {
		conf.Timeout = defaultTimeout
	}

	if conf.RatePerSecond <= 0 {
		conf.RatePerSecond = defaultRatePerSec
	}

	return &notifierImpl{
		config:  conf,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(conf.RatePerSecond), 1),
		otel:    otel,
	}
}

func (n *notifierImpl) Notify(ctx context.Context, message Message) (err error) {
	ctx, scope := n.otel.NewScope(ctx, otelScopeName, otelScopeName+".Notify")
	defer scope.End()
	defer scope.TraceIfError(err)

	if n.config.ServiceEndpoint == constant.Empty {
		return ErrNotConfigured
	}

	if len(message.To) == 0 && len(n.config.AdminDistributionList) == 0 {
		return ErrNoRecipients
	}

	scope.SetAttribute(otelAttrRecipients, append(append([]string{}, message.To...), n.config.AdminDistributionList...))

	body, err := json.Marshal(payload{
		From:    n.config.SenderIdentity,
		To:      message.To,
		Cc:      n.config.AdminDistributionList,
		Subject: message.Subject,
		Body:    message.Body,
		Links:   message.Links,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal notification")

		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err = n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for notification slot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.ServiceEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}

	request.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	response, err := n.client.Do(request)
	if err != nil {
		log.Error().Err(err).Str("endpoint", n.config.ServiceEndpoint).Msg("failed to send notification")

		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		err = fmt.Errorf("notification service responded %d: %s", response.StatusCode, bytes.TrimSpace(detail))

		log.Error().Err(err).Msg("notification rejected")

		return err
	}

	log.Info().Str("subject", message.Subject).Int("recipients", len(message.To)).Msg("notification sent")

	return nil
}

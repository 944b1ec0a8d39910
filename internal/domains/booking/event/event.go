// Package event defines the booking messages published to Kafka and turns them into
// notifications on the consuming side.
package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/notification"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/model"
	"roombook/shared/constant"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	TypeCreated = "booking.created"
	TypeUpdated = "booking.updated"

	linkCalendar = "calendar"
)

type Booking struct {
	ID             string `json:"id"`
	RoomID         string `json:"room_id"`
	RoomName       string `json:"room_name"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Purpose        string `json:"purpose"`
	RecurrenceInfo string `json:"recurrence_info"`
	CalendarURL    string `json:"calendar_url,omitempty"`
}

type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Booking    Booking   `json:"booking"`
}

func New(eventType string, booking model.Booking, recurrenceInfo string) Envelope {
	view := booking.Schedule()

	return Envelope{
		Type:       eventType,
		OccurredAt: timezone.Now(),
		Booking: Booking{
			ID:             booking.ID,
			RoomID:         booking.RoomID,
			RoomName:       booking.RoomName,
			RequesterName:  booking.RequesterName,
			RequesterEmail: booking.RequesterEmail,
			Date:           timezone.FormatDate(view.Date),
			StartTime:      booking.StartTime.String(),
			EndTime:        booking.EndTime.String(),
			Purpose:        booking.Purpose,
			RecurrenceInfo: recurrenceInfo,
			CalendarURL:    booking.CalendarURL,
		},
	}
}

// Message keys the event by booking id so events of one booking stay ordered.
func (e Envelope) Message() kafka.Message {
	return kafka.Message{Key: e.Booking.ID, Value: e}
}

// Notification renders the notice sent to the requester.
func (e Envelope) Notification() notification.Message {
	booking := e.Booking

	verb := "confirmed"
	if e.Type == TypeUpdated {
		verb = "updated"
	}

	lines := []string{
		fmt.Sprintf("Hello %s,", booking.RequesterName),
		"",
		fmt.Sprintf("Your booking of %s has been %s.", booking.RoomName, verb),
		fmt.Sprintf("Date: %s", booking.Date),
		fmt.Sprintf("Time: %s - %s", booking.StartTime, booking.EndTime),
		fmt.Sprintf("Schedule: %s", booking.RecurrenceInfo),
	}

	if booking.Purpose != "" {
		lines = append(lines, "Purpose: "+booking.Purpose)
	}

	message := notification.Message{
		To:      []string{booking.RequesterEmail},
		Subject: fmt.Sprintf("Room booking %s: %s on %s", verb, booking.RoomName, booking.Date),
		Body:    strings.Join(lines, "\n"),
	}

	if booking.CalendarURL != "" {
		message.Links = map[string]string{linkCalendar: booking.CalendarURL}
	}

	return message
}

// Consumer forwards booking events to the notification service.
type Consumer struct {
	notifier notification.Notifier
	otel     otel.Otel
}

func NewConsumer(notifier notification.Notifier, otel otel.Otel) *Consumer {
	return &Consumer{notifier: notifier, otel: otel}
}

// Handle satisfies kafka.Handler.
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Handle")
	defer scope.End()
	defer scope.TraceIfError(err)

	envelope, err := kafka.Decode[Envelope](msg)
	if err != nil {
		return err //nolint:wrapcheck
	}

	switch envelope.Type {
	case TypeCreated, TypeUpdated:
	default:
		log.Warn().Str("type", envelope.Type).Msg("ignoring unknown booking event")

		return nil
	}

	if err = c.notifier.Notify(ctx, envelope.Notification()); err != nil {
		log.Error().Err(err).Str("booking", envelope.Booking.ID).Msg("failed to send booking notification")

		return fmt.Errorf("failed to send booking notification: %w", err)
	}

	return nil
}

// Worker feeds the booking topic into a Consumer until its context ends.
type Worker struct {
	config   *config.Config
	client   kafka.Client
	consumer *Consumer
}

func NewWorker(cfg *config.Config, client kafka.Client, consumer *Consumer) *Worker {
	return &Worker{config: cfg, client: client, consumer: consumer}
}

func (w *Worker) Run(ctx context.Context) error {
	topic := w.config.Kafka.Topics.Booking

	log.Info().Str("topic", topic).Str("group", w.config.Kafka.ConsumerGroup).Msg("Starting booking notifier.")

	if err := w.client.Consume(ctx, w.config.Kafka.ConsumerGroup, topic, w.consumer.Handle); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to consume booking events")

		return fmt.Errorf("failed to consume booking events: %w", err)
	}

	return nil
}

// Package calendar renders bookings as iCalendar files.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"

	ics "github.com/arran4/golang-ical"
)

const (
	productID = "-//roombook//Room Booking//EN"
	uidDomain = "roombook"
	uidLayout = "20060102"
)

var ErrNoOccurrences = errors.New("booking has no occurrences")

// Build returns an iCalendar document with one event per occurrence of the booking.
// stamp is written as DTSTAMP on every event.
func Build(booking model.Booking, stamp time.Time) (string, error) {
	view := booking.Schedule()

	dates, err := view.Occurrences()
	if err != nil {
		return "", fmt.Errorf("failed to expand booking: %w", err)
	}

	if len(dates) == 0 {
		return "", ErrNoOccurrences
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(booking.RoomName)

	summary := Summary(booking)
	description := Description(booking)

	for _, date := range dates {
		event := cal.AddEvent(UID(booking.ID, date))
		event.SetDtStampTime(stamp)
		event.SetStartAt(at(date, view.Window.Start))
		event.SetEndAt(at(date, view.Window.End))
		event.SetSummary(summary)
		event.SetDescription(description)
		event.SetLocation(booking.RoomName)
	}

	return cal.Serialize(), nil
}

// UID identifies a single occurrence, e.g. "<booking id>-20240110@roombook".
func UID(bookingID string, date time.Time) string {
	return fmt.Sprintf("%s-%s@%s", bookingID, date.Format(uidLayout), uidDomain)
}

func Summary(booking model.Booking) string {
	if booking.Purpose == "" {
		return "Room booking: " + booking.RoomName
	}

	return fmt.Sprintf("%s (%s)", booking.Purpose, booking.RoomName)
}

// Description lists purpose, requester and recurrence, one per line.
func Description(booking model.Booking) string {
	lines := []string{}

	if booking.Purpose != "" {
		lines = append(lines, "Purpose: "+booking.Purpose)
	}

	lines = append(lines,
		fmt.Sprintf("Requested by: %s <%s>", booking.RequesterName, booking.RequesterEmail),
		"Schedule: "+schedule.Describe(booking.Recurrence()),
	)

	return strings.Join(lines, "\n")
}

func at(date time.Time, clock schedule.Clock) time.Time {
	return date.Add(time.Duration(clock) * time.Minute)
}

package schedule

import (
	"strings"
	"time"
)

// Recurrence is the repeat rule attached to a recurring booking.
type Recurrence struct {
	Kind     Kind
	Until    time.Time
	Weekdays []time.Weekday
}

// Booking is the scheduling view of a stored booking: one date, one window and an
// optional recurrence rule.
type Booking struct {
	ID         string
	Date       time.Time
	Window     Window
	Recurrence *Recurrence
}

// Occurrences returns every date the booking occupies. A one-time booking occupies
// exactly its own date.
func (b Booking) Occurrences() ([]time.Time, error) {
	if b.Recurrence == nil {
		return []time.Time{dateOf(b.Date)}, nil
	}

	weekdays := b.Recurrence.Weekdays
	if b.Recurrence.Kind != KindWeekly {
		weekdays = nil
	}

	return Occurrences(b.Date, b.Recurrence.Until, b.Recurrence.Kind, weekdays)
}

// Reservations expands the booking into concrete per-date reservations.
func (b Booking) Reservations() ([]Reservation, error) {
	dates, err := b.Occurrences()
	if err != nil {
		return nil, err
	}

	reservations := make([]Reservation, len(dates))
	for i, date := range dates {
		reservations[i] = Reservation{BookingID: b.ID, Date: date, Window: b.Window}
	}

	return reservations, nil
}

// Expand flattens a set of bookings into reservations, skipping the booking whose
// id equals exclude.
func Expand(bookings []Booking, exclude string) ([]Reservation, error) {
	reservations := []Reservation{}

	for _, booking := range bookings {
		if exclude != "" && booking.ID == exclude {
			continue
		}

		expanded, err := booking.Reservations()
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, expanded...)
	}

	return reservations, nil
}

// Describe renders a short human readable summary of the recurrence,
// e.g. "Recurring weekly until 2024-01-15 on Mon, Wed".
func Describe(recurrence *Recurrence) string {
	if recurrence == nil {
		return "One-time"
	}

	var builder strings.Builder

	builder.WriteString("Recurring ")
	builder.WriteString(string(recurrence.Kind))

	if !recurrence.Until.IsZero() {
		builder.WriteString(" until ")
		builder.WriteString(recurrence.Until.Format(dateKeyLayout))
	}

	if recurrence.Kind == KindWeekly && len(recurrence.Weekdays) > 0 {
		names := make([]string, len(recurrence.Weekdays))
		for i, day := range recurrence.Weekdays {
			names[i] = WeekdayShortName(day)
		}

		builder.WriteString(" on ")
		builder.WriteString(strings.Join(names, ", "))
	}

	return builder.String()
}

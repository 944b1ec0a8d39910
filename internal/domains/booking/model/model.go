package model

import (
	"time"

	"roombook/internal/domains/booking/schedule"
	"roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/lib/pq"
)

const (
	TableName  = "room_bookings"
	EntityName = "booking"

	// CachePrefix namespaces every cached booking read.
	CachePrefix = "booking"

	FieldID                = "id"
	FieldRoomID            = "room_id"
	FieldRoomName          = "room_name"
	FieldRequesterName     = "requester_name"
	FieldRequesterEmail    = "requester_email"
	FieldBookingDate       = "booking_date"
	FieldStartTime         = "start_time"
	FieldEndTime           = "end_time"
	FieldPurpose           = "purpose"
	FieldIsRecurring       = "is_recurring"
	FieldRecurrenceType    = "recurrence_type"
	FieldRecurrenceEndDate = "recurrence_end_date"
	FieldRecurrenceDays    = "recurrence_days"
	FieldCalendarURL       = "calendar_url"
)

// Booking is one stored reservation request. A recurring booking is kept as a single
// row; its occurrences are derived on demand.
type Booking struct {
	ID                string         `db:"id"`
	RoomID            string         `db:"room_id"`
	RoomName          string         `db:"room_name"`
	RequesterName     string         `db:"requester_name"`
	RequesterEmail    string         `db:"requester_email"`
	BookingDate       time.Time      `db:"booking_date"`
	StartTime         schedule.Clock `db:"start_time"`
	EndTime           schedule.Clock `db:"end_time"`
	Purpose           string         `db:"purpose"`
	IsRecurring       bool           `db:"is_recurring"`
	RecurrenceType    string         `db:"recurrence_type"`
	RecurrenceEndDate *time.Time     `db:"recurrence_end_date"`
	RecurrenceDays    pq.Int64Array  `db:"recurrence_days"`
	CalendarURL       string         `db:"calendar_url"`
	model.Metadata
}

// Recurrence returns the repeat rule of the booking, or nil for a one-time booking.
func (b Booking) Recurrence() *schedule.Recurrence {
	if !b.IsRecurring {
		return nil
	}

	recurrence := &schedule.Recurrence{Kind: schedule.Kind(b.RecurrenceType)}

	if b.RecurrenceEndDate != nil {
		recurrence.Until = calendarDate(*b.RecurrenceEndDate)
	}

	if recurrence.Kind == schedule.KindWeekly {
		recurrence.Weekdays = schedule.NormalizeWeekdays(b.Weekdays())
	}

	return recurrence
}

// Schedule converts the stored row into its scheduling view. DATE columns come back
// from the driver without the application zone, so the calendar day is rebuilt in it.
func (b Booking) Schedule() schedule.Booking {
	return schedule.Booking{
		ID:         b.ID,
		Date:       calendarDate(b.BookingDate),
		Window:     schedule.Window{Start: b.StartTime, End: b.EndTime},
		Recurrence: b.Recurrence(),
	}
}

func (b Booking) Weekdays() []int {
	days := make([]int, len(b.RecurrenceDays))
	for i, day := range b.RecurrenceDays {
		days[i] = int(day)
	}

	return days
}

// Schedules converts a set of rows for availability checks.
func Schedules(bookings []Booking) []schedule.Booking {
	res := make([]schedule.Booking, len(bookings))
	for i, booking := range bookings {
		res[i] = booking.Schedule()
	}

	return res
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, timezone.GetLocation())
}

package calendar_test

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/domains/booking/calendar"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/timezone"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := timezone.ParseDate(value)
	require.NoError(t, err)

	return parsed
}

func TestBuild_OneTime(t *testing.T) {
	booking := model.Booking{
		ID:             "b1",
		RoomName:       "Orchid",
		RequesterName:  "Dewi",
		RequesterEmail: "dewi@example.com",
		BookingDate:    date(t, "2024-01-10"),
		StartTime:      schedule.Clock(9 * 60),
		EndTime:        schedule.Clock(10*60 + 30),
		Purpose:        "Sprint review",
	}

	content, err := calendar.Build(booking, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(content))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "b1-20240110@roombook", event.Id())
	assert.Equal(t, "Sprint review (Orchid)", event.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Orchid", event.GetProperty(ics.ComponentPropertyLocation).Value)

	start, err := event.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC)), "start %s", start)

	end, err := event.GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2024, 1, 10, 3, 30, 0, 0, time.UTC)), "end %s", end)
}

func TestBuild_WeeklyHasOneEventPerOccurrence(t *testing.T) {
	until := date(t, "2024-01-15")
	booking := model.Booking{
		ID:                "b2",
		RoomName:          "Lotus",
		BookingDate:       date(t, "2024-01-01"),
		StartTime:         schedule.Clock(13 * 60),
		EndTime:           schedule.Clock(14 * 60),
		IsRecurring:       true,
		RecurrenceType:    string(schedule.KindWeekly),
		RecurrenceEndDate: &until,
		RecurrenceDays:    pq.Int64Array{1, 3},
	}

	content, err := calendar.Build(booking, time.Now())
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(content))
	require.NoError(t, err)

	uids := []string{}
	for _, event := range cal.Events() {
		uids = append(uids, event.Id())
	}

	assert.Equal(t, []string{
		"b2-20240101@roombook",
		"b2-20240103@roombook",
		"b2-20240108@roombook",
		"b2-20240110@roombook",
		"b2-20240115@roombook",
	}, uids)
}

func TestBuild_UnknownRecurrence(t *testing.T) {
	until := date(t, "2024-01-15")
	booking := model.Booking{
		ID:                "b3",
		BookingDate:       date(t, "2024-01-01"),
		StartTime:         schedule.Clock(60),
		EndTime:           schedule.Clock(120),
		IsRecurring:       true,
		RecurrenceType:    "yearly",
		RecurrenceEndDate: &until,
	}

	_, err := calendar.Build(booking, time.Now())

	assert.ErrorIs(t, err, schedule.ErrUnknownKind)
}

func TestSummaryAndDescription(t *testing.T) {
	booking := model.Booking{RoomName: "Orchid", RequesterName: "Dewi", RequesterEmail: "dewi@example.com"}

	assert.Equal(t, "Room booking: Orchid", calendar.Summary(booking))
	assert.Equal(t, "Requested by: Dewi <dewi@example.com>\nSchedule: One-time", calendar.Description(booking))

	booking.Purpose = "Interview"
	assert.Equal(t, "Interview (Orchid)", calendar.Summary(booking))
	assert.True(t, strings.HasPrefix(calendar.Description(booking), "Purpose: Interview\n"))
}

package schedule_test

import (
	"testing"
	"time"

	"roombook/internal/domains/booking/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(t *testing.T, start, end string) schedule.Window {
	t.Helper()

	w, err := schedule.NewWindow(start, end)
	require.NoError(t, err)

	return w
}

func TestCheckAvailability(t *testing.T) {
	existing := []schedule.Reservation{
		{BookingID: "b-1", Date: date("2024-01-10"), Window: schedule.Window{Start: 9 * 60, End: 10*60 + 30}},
		{BookingID: "b-2", Date: date("2024-01-11"), Window: schedule.Window{Start: 13 * 60, End: 14 * 60}},
	}

	tests := []struct {
		name         string
		dates        []time.Time
		start        string
		end          string
		wantConflict bool
		wantBooking  string
		wantMessage  string
	}{
		{
			name:         "partial overlap",
			dates:        []time.Time{date("2024-01-10")},
			start:        "10:00",
			end:          "11:00",
			wantConflict: true,
			wantBooking:  "b-1",
			wantMessage:  "room is already booked on 2024-01-10 from 09:00 to 10:30",
		},
		{
			name:         "identical interval",
			dates:        []time.Time{date("2024-01-10")},
			start:        "09:00",
			end:          "10:30",
			wantConflict: true,
			wantBooking:  "b-1",
		},
		{
			name:         "candidate contains existing",
			dates:        []time.Time{date("2024-01-11")},
			start:        "12:00",
			end:          "15:00",
			wantConflict: true,
			wantBooking:  "b-2",
		},
		{
			name:  "back to back after",
			dates: []time.Time{date("2024-01-10")},
			start: "10:30",
			end:   "11:30",
		},
		{
			name:  "back to back before",
			dates: []time.Time{date("2024-01-10")},
			start: "08:00",
			end:   "09:00",
		},
		{
			name:  "same window on another date",
			dates: []time.Time{date("2024-01-12")},
			start: "09:00",
			end:   "10:30",
		},
		{
			name:         "conflict on a later occurrence",
			dates:        []time.Time{date("2024-01-09"), date("2024-01-10"), date("2024-01-11")},
			start:        "13:30",
			end:          "14:30",
			wantConflict: true,
			wantBooking:  "b-2",
			wantMessage:  "room is already booked on 2024-01-11 from 13:00 to 14:00",
		},
		{
			name:  "no candidate dates",
			dates: nil,
			start: "09:00",
			end:   "10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := schedule.CheckAvailability(existing, tt.dates, window(t, tt.start, tt.end))
			require.NoError(t, err)

			if !tt.wantConflict {
				assert.Nil(t, conflict)
				return
			}

			require.NotNil(t, conflict)
			assert.Equal(t, tt.wantBooking, conflict.BookingID)

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, conflict.String())
			}
		})
	}
}

func TestCheckAvailability_InvalidWindow(t *testing.T) {
	tests := []struct {
		name   string
		window schedule.Window
	}{
		{name: "start equals end", window: schedule.Window{Start: 10 * 60, End: 10 * 60}},
		{name: "start after end", window: schedule.Window{Start: 11 * 60, End: 10 * 60}},
	}

	existing := []schedule.Reservation{
		{BookingID: "b-1", Date: date("2024-01-10"), Window: schedule.Window{Start: 9 * 60, End: 12 * 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := schedule.CheckAvailability(existing, []time.Time{date("2024-01-10")}, tt.window)
			assert.ErrorIs(t, err, schedule.ErrInvalidWindow)
			assert.Nil(t, conflict)
		})
	}
}

func TestIsAvailable(t *testing.T) {
	booking := schedule.Booking{
		ID:     "weekly",
		Date:   date("2024-01-01"),
		Window: schedule.Window{Start: 9 * 60, End: 10 * 60},
		Recurrence: &schedule.Recurrence{
			Kind:     schedule.KindWeekly,
			Until:    date("2024-01-31"),
			Weekdays: []time.Weekday{time.Monday},
		},
	}

	existing, err := schedule.Expand([]schedule.Booking{booking}, "")
	require.NoError(t, err)
	require.Len(t, existing, 5)

	ok, conflict, err := schedule.IsAvailable(existing, []time.Time{date("2024-01-22")}, window(t, "09:30", "10:30"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, conflict)
	assert.Equal(t, "2024-01-22", conflict.Date.Format("2006-01-02"))

	ok, conflict, err = schedule.IsAvailable(existing, []time.Time{date("2024-01-23")}, window(t, "09:30", "10:30"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, conflict)
}

func TestExpand_ExcludesBooking(t *testing.T) {
	bookings := []schedule.Booking{
		{ID: "a", Date: date("2024-01-10"), Window: schedule.Window{Start: 60, End: 120}},
		{ID: "b", Date: date("2024-01-10"), Window: schedule.Window{Start: 180, End: 240}},
	}

	reservations, err := schedule.Expand(bookings, "a")
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "b", reservations[0].BookingID)
}

func TestBookingOccurrences(t *testing.T) {
	t.Run("one-time booking yields its own date", func(t *testing.T) {
		b := schedule.Booking{ID: "x", Date: time.Date(2024, 3, 5, 15, 0, 0, 0, utc7)}

		dates, err := b.Occurrences()
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-03-05"}, formatDates(dates))
	})

	t.Run("weekdays ignored for daily", func(t *testing.T) {
		b := schedule.Booking{
			Date: date("2024-03-01"),
			Recurrence: &schedule.Recurrence{
				Kind:     schedule.KindDaily,
				Until:    date("2024-03-03"),
				Weekdays: []time.Weekday{time.Monday},
			},
		}

		dates, err := b.Occurrences()
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, formatDates(dates))
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name       string
		recurrence *schedule.Recurrence
		expected   string
	}{
		{name: "one-time", recurrence: nil, expected: "One-time"},
		{
			name: "weekly with days",
			recurrence: &schedule.Recurrence{
				Kind:     schedule.KindWeekly,
				Until:    date("2024-01-15"),
				Weekdays: []time.Weekday{time.Monday, time.Wednesday},
			},
			expected: "Recurring weekly until 2024-01-15 on Mon, Wed",
		},
		{
			name:       "monthly",
			recurrence: &schedule.Recurrence{Kind: schedule.KindMonthly, Until: date("2024-06-30")},
			expected:   "Recurring monthly until 2024-06-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schedule.Describe(tt.recurrence))
		})
	}
}

func TestNewWindow_ParsesBothEnds(t *testing.T) {
	w, err := schedule.NewWindow("09:05", "10:30")
	require.NoError(t, err)
	assert.Equal(t, schedule.Window{Start: 545, End: 630}, w)
	assert.Equal(t, "09:05", w.Start.String())

	for _, invalid := range []string{"", "9", "25:00", "10:60", "ten"} {
		_, err := schedule.NewWindow(invalid, "11:00")
		assert.ErrorIs(t, err, schedule.ErrInvalidClock, invalid)

		_, err = schedule.NewWindow("08:00", invalid)
		assert.ErrorIs(t, err, schedule.ErrInvalidClock, invalid)
	}

	_, err = schedule.NewWindow("10:00", "10:00")
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)

	_, err = schedule.NewWindow("11:00", "10:00")
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)
}

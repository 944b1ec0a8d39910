package dto_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/failure"
	"roombook/shared/timezone"
)

func pinToday(t *testing.T) {
	t.Helper()

	// 2024-01-08 00:30 in UTC+7
	restore := timezone.SetNow(func() time.Time {
		return time.Date(2024, 1, 7, 17, 30, 0, 0, time.UTC)
	})
	t.Cleanup(restore)
}

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := timezone.ParseDate(value)
	require.NoError(t, err)

	return parsed
}

const maxRecurrenceDays = 90

func TestCreateBookingRequest_Slot(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateBookingRequest
		wantMsg string
		check   func(t *testing.T, slot dto.Slot)
	}{
		{
			name: "one-time",
			req:  dto.CreateBookingRequest{BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00"},
			check: func(t *testing.T, slot dto.Slot) {
				assert.Equal(t, date(t, "2024-01-10"), slot.Date)
				assert.Equal(t, "09:00-10:00", slot.Window.String())
				assert.Nil(t, slot.Recurrence)
			},
		},
		{
			name: "recurrence fields ignored when not recurring",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				RecurrenceType: "weekly", RecurrenceDays: []int{1},
			},
			check: func(t *testing.T, slot dto.Slot) {
				assert.Nil(t, slot.Recurrence)
			},
		},
		{
			name: "weekly keeps sorted unique weekdays",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "weekly", RecurrenceEndDate: "2024-02-10",
				RecurrenceDays: []int{5, 1, 5},
			},
			check: func(t *testing.T, slot dto.Slot) {
				require.NotNil(t, slot.Recurrence)
				assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, slot.Recurrence.Weekdays)
				assert.Equal(t, date(t, "2024-02-10"), slot.Recurrence.Until)
			},
		},
		{
			name: "daily drops weekdays",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "daily", RecurrenceEndDate: "2024-01-12",
				RecurrenceDays: []int{1, 2},
			},
			check: func(t *testing.T, slot dto.Slot) {
				require.NotNil(t, slot.Recurrence)
				assert.Empty(t, slot.Recurrence.Weekdays)
			},
		},
		{
			name:    "malformed date",
			req:     dto.CreateBookingRequest{BookingDate: "10-01-2024", StartTime: "09:00", EndTime: "10:00"},
			wantMsg: "booking_date must be a valid date in YYYY-MM-DD format",
		},
		{
			name:    "malformed time",
			req:     dto.CreateBookingRequest{BookingDate: "2024-01-10", StartTime: "9am", EndTime: "10:00"},
			wantMsg: schedule.ErrInvalidClock.Error(),
		},
		{
			name:    "empty window",
			req:     dto.CreateBookingRequest{BookingDate: "2024-01-10", StartTime: "10:00", EndTime: "10:00"},
			wantMsg: schedule.ErrInvalidWindow.Error(),
		},
		{
			name: "unknown recurrence type",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "yearly", RecurrenceEndDate: "2024-02-10",
			},
			wantMsg: schedule.ErrUnknownKind.Error(),
		},
		{
			name: "end date before start date",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "daily", RecurrenceEndDate: "2024-01-09",
			},
			wantMsg: "recurrence_end_date cannot be before booking_date",
		},
		{
			name: "recurrence up to the limit",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "daily", RecurrenceEndDate: "2024-04-09",
			},
			check: func(t *testing.T, slot dto.Slot) {
				require.NotNil(t, slot.Recurrence)
				assert.Equal(t, date(t, "2024-04-09"), slot.Last())
			},
		},
		{
			name: "recurrence past the limit",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "daily", RecurrenceEndDate: "2024-04-10",
			},
			wantMsg: "recurrence_end_date cannot be more than 90 days after booking_date",
		},
		{
			name: "far future series",
			req: dto.CreateBookingRequest{
				BookingDate: "2024-01-10", StartTime: "09:00", EndTime: "10:00",
				IsRecurring: true, RecurrenceType: "weekly", RecurrenceEndDate: "9999-12-31",
			},
			wantMsg: "recurrence_end_date cannot be more than 90 days after booking_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := tt.req.Slot(maxRecurrenceDays)

			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
				assert.Equal(t, tt.wantMsg, err.Error())

				return
			}

			require.NoError(t, err)
			tt.check(t, slot)
		})
	}
}

func TestSlot_NotPast(t *testing.T) {
	pinToday(t)

	today := date(t, "2024-01-08")

	assert.NoError(t, dto.Slot{Date: today}.NotPast())
	assert.Equal(t, today, dto.Slot{Date: today}.Last())
	assert.EqualError(t, dto.Slot{Date: today.AddDate(0, 0, -1)}.NotPast(), "booking_date cannot be in the past")
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	req := dto.CreateBookingRequest{
		RequesterName:     "  Sari ",
		RequesterEmail:    "sari@example.com ",
		BookingDate:       "2024-01-10",
		StartTime:         "13:00",
		EndTime:           "15:00",
		Purpose:           " Demo ",
		IsRecurring:       true,
		RecurrenceType:    "weekly",
		RecurrenceEndDate: "2024-02-01",
		RecurrenceDays:    []int{3},
	}

	slot, err := req.Slot(maxRecurrenceDays)
	require.NoError(t, err)

	booking := req.ToModel("r1", "Orchid", "user-1", slot)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "Sari", booking.RequesterName)
	assert.Equal(t, "sari@example.com", booking.RequesterEmail)
	assert.Equal(t, "Demo", booking.Purpose)
	assert.Equal(t, "weekly", booking.RecurrenceType)
	assert.Equal(t, pq.Int64Array{3}, booking.RecurrenceDays)
	require.NotNil(t, booking.RecurrenceEndDate)
	assert.Equal(t, date(t, "2024-02-01"), *booking.RecurrenceEndDate)
	assert.Equal(t, "user-1", booking.CreatedBy)
}

func storedWeekly(t *testing.T) model.Booking {
	t.Helper()

	until := date(t, "2024-03-01")
	start, err := schedule.ParseClock("09:00")
	require.NoError(t, err)
	end, err := schedule.ParseClock("10:00")
	require.NoError(t, err)

	return model.Booking{
		ID:                "b1",
		RequesterName:     "Sari",
		RequesterEmail:    "sari@example.com",
		BookingDate:       date(t, "2024-01-01"),
		StartTime:         start,
		EndTime:           end,
		Purpose:           "Standup",
		IsRecurring:       true,
		RecurrenceType:    "weekly",
		RecurrenceEndDate: &until,
		RecurrenceDays:    pq.Int64Array{1, 3},
	}
}

func TestUpdateBookingRequest_Merge(t *testing.T) {
	empty := ""
	stop := false

	tests := []struct {
		name            string
		req             dto.UpdateBookingRequest
		changesSchedule bool
		want            func(t *testing.T, merged dto.CreateBookingRequest)
	}{
		{
			name: "empty edit keeps stored values",
			req:  dto.UpdateBookingRequest{},
			want: func(t *testing.T, merged dto.CreateBookingRequest) {
				assert.Equal(t, "2024-01-01", merged.BookingDate)
				assert.Equal(t, "09:00", merged.StartTime)
				assert.Equal(t, "2024-03-01", merged.RecurrenceEndDate)
				assert.Equal(t, []int{1, 3}, merged.RecurrenceDays)
				assert.Equal(t, "Standup", merged.Purpose)
			},
		},
		{
			name: "purpose can be cleared",
			req:  dto.UpdateBookingRequest{Purpose: &empty},
			want: func(t *testing.T, merged dto.CreateBookingRequest) {
				assert.Empty(t, merged.Purpose)
			},
		},
		{
			name:            "recurrence can be switched off",
			req:             dto.UpdateBookingRequest{IsRecurring: &stop},
			changesSchedule: true,
			want: func(t *testing.T, merged dto.CreateBookingRequest) {
				assert.False(t, merged.IsRecurring)
			},
		},
		{
			name:            "time change",
			req:             dto.UpdateBookingRequest{EndTime: "11:00"},
			changesSchedule: true,
			want: func(t *testing.T, merged dto.CreateBookingRequest) {
				assert.Equal(t, "09:00", merged.StartTime)
				assert.Equal(t, "11:00", merged.EndTime)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := tt.req.Merge(storedWeekly(t))

			assert.Equal(t, tt.changesSchedule, tt.req.ChangesSchedule())
			tt.want(t, merged)
		})
	}
}

func TestUpdateBookingRequest_CheckNotPast(t *testing.T) {
	pinToday(t)

	current := storedWeekly(t)

	untouched := dto.UpdateBookingRequest{StartTime: "08:00"}
	merged := untouched.Merge(current)
	slot, err := merged.Slot(maxRecurrenceDays)
	require.NoError(t, err)
	assert.NoError(t, untouched.CheckNotPast(slot))

	moved := dto.UpdateBookingRequest{BookingDate: "2024-01-02"}
	merged = moved.Merge(current)
	slot, err = merged.Slot(maxRecurrenceDays)
	require.NoError(t, err)
	assert.EqualError(t, moved.CheckNotPast(slot), "booking_date cannot be in the past")

	shortened := dto.UpdateBookingRequest{RecurrenceEndDate: "2024-01-05"}
	merged = shortened.Merge(current)
	slot, err = merged.Slot(maxRecurrenceDays)
	require.NoError(t, err)
	assert.EqualError(t, shortened.CheckNotPast(slot), "recurrence_end_date cannot be in the past")
}

func TestBookingResponse_FromModel(t *testing.T) {
	var res dto.BookingResponse
	res.FromModel(storedWeekly(t))

	assert.Equal(t, "2024-01-01", res.BookingDate)
	assert.Equal(t, "2024-03-01", res.RecurrenceEndDate)
	assert.Equal(t, []int{1, 3}, res.RecurrenceDays)
	assert.Equal(t, "Recurring weekly until 2024-03-01 on Mon, Wed", res.RecurrenceInfo)
}

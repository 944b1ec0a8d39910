package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/domains/booking/schedule"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    schedule.Clock
		wantErr bool
	}{
		{name: "midnight", value: "00:00", want: 0},
		{name: "morning", value: "09:30", want: 570},
		{name: "last minute", value: "23:59", want: 1439},
		{name: "hour out of range", value: "24:00", wantErr: true},
		{name: "missing minutes", value: "9", wantErr: true},
		{name: "twelve hour format", value: "9:30 PM", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.ParseClock(tt.value)

			if tt.wantErr {
				assert.ErrorIs(t, err, schedule.ErrInvalidClock)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.value, got.String())
		})
	}
}

func TestClock_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    string
		wantErr bool
	}{
		{name: "postgres time text", src: []byte("14:45:00"), want: "14:45"},
		{name: "string without seconds", src: "08:05", want: "08:05"},
		{name: "time value", src: time.Date(0, 1, 1, 17, 20, 59, 0, time.UTC), want: "17:20"},
		{name: "garbage", src: "noon", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var clock schedule.Clock

			err := clock.Scan(tt.src)

			if tt.wantErr {
				assert.ErrorIs(t, err, schedule.ErrInvalidClock)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, clock.String())
		})
	}
}

func TestClock_Value(t *testing.T) {
	value, err := schedule.Clock(9*60 + 5).Value()

	require.NoError(t, err)
	assert.Equal(t, "09:05", value)
}

func TestNewWindow(t *testing.T) {
	window, err := schedule.NewWindow("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, "09:00-10:30", window.String())

	_, err = schedule.NewWindow("10:30", "10:30")
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)

	_, err = schedule.NewWindow("10:30", "25:00")
	assert.ErrorIs(t, err, schedule.ErrInvalidClock)
}

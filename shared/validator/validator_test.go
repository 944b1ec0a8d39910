package validator_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/shared/failure"
	"roombook/shared/timezone"
	"roombook/shared/validator"
)

type reservation struct {
	RoomName       string `json:"room_name"       validate:"required,max=50"`
	RequesterEmail string `json:"requester_email" validate:"omitempty,email"`
	Attendees      int    `json:"attendees"       validate:"gte=1,lte=200"`
	Recurrence     string `json:"recurrence"      validate:"oneof=none daily weekly monthly"`
	BookingDate    string `json:"booking_date"    validate:"required,datetime=2006-01-02,notpast"`
	StartTime      string `json:"start_time"      validate:"required,datetime=15:04"`
	Weekdays       []int  `json:"weekdays"        validate:"omitempty,unique,dive,min=0,max=6"`
	Website        string `json:"website"         validate:"omitempty,http_url"`
	Internal       string `json:"-"               validate:"empty"`
}

func valid() reservation {
	return reservation{
		RoomName:    "Orchid",
		Attendees:   4,
		Recurrence:  "weekly",
		BookingDate: "2024-01-10",
		StartTime:   "09:00",
		Weekdays:    []int{1, 3},
	}
}

func frozenClock(t *testing.T) {
	t.Helper()

	restore := timezone.SetNow(func() time.Time {
		return time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)
	})
	t.Cleanup(restore)
}

func TestValidateStruct(t *testing.T) {
	frozenClock(t)

	tests := []struct {
		name    string
		mutate  func(*reservation)
		wantMsg string
	}{
		{name: "valid", mutate: func(*reservation) {}},
		{name: "future date", mutate: func(r *reservation) { r.BookingDate = "2024-02-01" }},
		{name: "missing room", mutate: func(r *reservation) { r.RoomName = "" }, wantMsg: "room_name is required"},
		{name: "long room name", mutate: func(r *reservation) { r.RoomName = strings.Repeat("a", 51) }, wantMsg: "room_name must be less than or equal to 50"},
		{name: "bad email", mutate: func(r *reservation) { r.RequesterEmail = "nope" }, wantMsg: "requester_email must be a valid email address"},
		{name: "too few attendees", mutate: func(r *reservation) { r.Attendees = 0 }, wantMsg: "attendees must be greater than or equal to 1"},
		{name: "unknown recurrence", mutate: func(r *reservation) { r.Recurrence = "yearly" }, wantMsg: "recurrence must be one of none daily weekly monthly"},
		{name: "yesterday", mutate: func(r *reservation) { r.BookingDate = "2024-01-09" }, wantMsg: "booking_date cannot be in the past"},
		{name: "malformed date", mutate: func(r *reservation) { r.BookingDate = "10/01/2024" }, wantMsg: "booking_date must match the format 2006-01-02"},
		{name: "malformed clock", mutate: func(r *reservation) { r.StartTime = "9am" }, wantMsg: "start_time must match the format 15:04"},
		{name: "repeated weekday", mutate: func(r *reservation) { r.Weekdays = []int{1, 1} }, wantMsg: "weekdays must not contain duplicates"},
		{name: "weekday out of range", mutate: func(r *reservation) { r.Weekdays = []int{7} }, wantMsg: "weekdays[0] must be less than or equal to 6"},
		{name: "non http url", mutate: func(r *reservation) { r.Website = "ftp://example.com" }, wantMsg: "website must be a valid http or https URL"},
		{name: "rule without template", mutate: func(r *reservation) { r.Internal = "set" }, wantMsg: "Internal is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := valid()
			tt.mutate(&data)

			err := validator.ValidateStruct(&data)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		tag     string
		wantMsg string
	}{
		{name: "present", field: "r1", tag: "required"},
		{name: "missing", field: "", tag: "required", wantMsg: "value is required"},
		{name: "in range", field: 25, tag: "gte=0,lte=100"},
		{name: "out of range", field: 150, tag: "gte=0,lte=100", wantMsg: "value must be less than or equal to 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate(t *testing.T) {
	frozenClock(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid body",
			body: `{"room_name":"Orchid","attendees":2,"recurrence":"none","booking_date":"2024-01-11","start_time":"10:30"}`,
		},
		{
			name:    "malformed body",
			body:    `{"room_name":}`,
			wantErr: "failed to decode request body",
		},
		{
			name:    "empty body object",
			body:    `{}`,
			wantErr: "room_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data reservation

			err := validator.Validate(strings.NewReader(tt.body), &data)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Orchid", data.RoomName)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

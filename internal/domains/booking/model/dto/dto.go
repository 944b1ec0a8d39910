package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateBookingRequest struct {
	RequesterName     string `json:"requester_name"      validate:"required,max=100"`
	RequesterEmail    string `json:"requester_email"     validate:"required,email,max=255"`
	BookingDate       string `json:"booking_date"        validate:"required,datetime=2006-01-02,notpast"`
	StartTime         string `json:"start_time"          validate:"required,datetime=15:04"`
	EndTime           string `json:"end_time"            validate:"required,datetime=15:04"`
	Purpose           string `json:"purpose"             validate:"omitempty,max=500"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrenceType    string `json:"recurrence_type"     validate:"omitempty,oneof=daily weekly monthly"`
	RecurrenceEndDate string `json:"recurrence_end_date" validate:"omitempty,datetime=2006-01-02,notpast"`
	RecurrenceDays    []int  `json:"recurrence_days"     validate:"omitempty,unique,dive,min=0,max=6"`
}

// Slot is the parsed scheduling part of a booking request.
type Slot struct {
	Date       time.Time
	Window     schedule.Window
	Recurrence *schedule.Recurrence
}

// Slot parses dates and times in the application zone and checks that the window and
// recurrence rule are well formed. A recurrence may run at most maxRecurrenceDays past
// booking_date. Weekdays are kept only for weekly recurrences.
func (c *CreateBookingRequest) Slot(maxRecurrenceDays int) (Slot, error) {
	var slot Slot

	date, err := timezone.ParseDate(c.BookingDate)
	if err != nil {
		return slot, failure.BadRequestFromString("booking_date must be a valid date in YYYY-MM-DD format")
	}

	window, err := schedule.NewWindow(c.StartTime, c.EndTime)
	if err != nil {
		return slot, windowFailure(err)
	}

	slot.Date = date
	slot.Window = window

	if !c.IsRecurring {
		return slot, nil
	}

	kind := schedule.Kind(c.RecurrenceType)
	if !kind.Valid() {
		return slot, failure.BadRequest(schedule.ErrUnknownKind)
	}

	if c.RecurrenceEndDate == "" {
		return slot, failure.BadRequestFromString("recurrence_end_date is required for recurring bookings")
	}

	until, err := timezone.ParseDate(c.RecurrenceEndDate)
	if err != nil {
		return slot, failure.BadRequestFromString("recurrence_end_date must be a valid date in YYYY-MM-DD format")
	}

	if until.Before(date) {
		return slot, failure.BadRequestFromString("recurrence_end_date cannot be before booking_date")
	}

	if until.After(date.AddDate(0, 0, maxRecurrenceDays)) {
		return slot, failure.BadRequestFromString(fmt.Sprintf("recurrence_end_date cannot be more than %d days after booking_date", maxRecurrenceDays))
	}

	slot.Recurrence = &schedule.Recurrence{Kind: kind, Until: until}
	if kind == schedule.KindWeekly {
		slot.Recurrence.Weekdays = schedule.NormalizeWeekdays(c.RecurrenceDays)
	}

	return slot, nil
}

// NotPast rejects a slot that starts or ends before today.
func (s Slot) NotPast() error {
	if timezone.IsPast(s.Date) {
		return failure.BadRequestFromString("booking_date cannot be in the past")
	}

	if s.Recurrence != nil && timezone.IsPast(s.Recurrence.Until) {
		return failure.BadRequestFromString("recurrence_end_date cannot be in the past")
	}

	return nil
}

// Last is the final date the slot can occupy.
func (s Slot) Last() time.Time {
	if s.Recurrence == nil {
		return s.Date
	}

	return s.Recurrence.Until
}

// Occurrences lists the candidate dates of the slot.
func (s Slot) Occurrences() ([]time.Time, error) {
	return s.Booking("").Occurrences()
}

func (s Slot) Booking(id string) schedule.Booking {
	return schedule.Booking{ID: id, Date: s.Date, Window: s.Window, Recurrence: s.Recurrence}
}

func (c *CreateBookingRequest) ToModel(roomID, roomName, user string, slot Slot) model.Booking {
	now := timezone.Now()

	booking := model.Booking{
		ID:             uuid.NewString(),
		RoomID:         roomID,
		RoomName:       roomName,
		RequesterName:  strings.TrimSpace(c.RequesterName),
		RequesterEmail: strings.TrimSpace(c.RequesterEmail),
		Purpose:        strings.TrimSpace(c.Purpose),
		RecurrenceDays: pq.Int64Array{},
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	ApplySlot(&booking, slot)

	return booking
}

// ApplySlot copies the scheduling fields of slot onto booking.
func ApplySlot(booking *model.Booking, slot Slot) {
	booking.BookingDate = slot.Date
	booking.StartTime = slot.Window.Start
	booking.EndTime = slot.Window.End
	booking.IsRecurring = slot.Recurrence != nil
	booking.RecurrenceType = ""
	booking.RecurrenceEndDate = nil
	booking.RecurrenceDays = pq.Int64Array{}

	if slot.Recurrence == nil {
		return
	}

	until := slot.Recurrence.Until
	booking.RecurrenceType = string(slot.Recurrence.Kind)
	booking.RecurrenceEndDate = &until

	for _, day := range slot.Recurrence.Weekdays {
		booking.RecurrenceDays = append(booking.RecurrenceDays, int64(day))
	}
}

// UpdateBookingRequest is a partial edit. Empty fields keep their stored value.
type UpdateBookingRequest struct {
	RequesterName     string  `json:"requester_name"      validate:"omitempty,max=100"`
	RequesterEmail    string  `json:"requester_email"     validate:"omitempty,email,max=255"`
	BookingDate       string  `json:"booking_date"        validate:"omitempty,datetime=2006-01-02,notpast"`
	StartTime         string  `json:"start_time"          validate:"omitempty,datetime=15:04"`
	EndTime           string  `json:"end_time"            validate:"omitempty,datetime=15:04"`
	Purpose           *string `json:"purpose"             validate:"omitempty,max=500"`
	IsRecurring       *bool   `json:"is_recurring"`
	RecurrenceType    string  `json:"recurrence_type"     validate:"omitempty,oneof=daily weekly monthly"`
	RecurrenceEndDate string  `json:"recurrence_end_date" validate:"omitempty,datetime=2006-01-02,notpast"`
	RecurrenceDays    []int   `json:"recurrence_days"     validate:"omitempty,unique,dive,min=0,max=6"`
}

// ChangesSchedule reports whether the edit touches dates or times.
func (u *UpdateBookingRequest) ChangesSchedule() bool {
	return u.BookingDate != "" || u.StartTime != "" || u.EndTime != "" || u.IsRecurring != nil ||
		u.RecurrenceType != "" || u.RecurrenceEndDate != "" || u.RecurrenceDays != nil
}

// Merge overlays the edit on the stored booking and returns the resulting full request.
func (u *UpdateBookingRequest) Merge(current model.Booking) CreateBookingRequest {
	merged := CreateBookingRequest{
		RequesterName:  current.RequesterName,
		RequesterEmail: current.RequesterEmail,
		BookingDate:    timezone.FormatDate(current.Schedule().Date),
		StartTime:      current.StartTime.String(),
		EndTime:        current.EndTime.String(),
		Purpose:        current.Purpose,
		IsRecurring:    current.IsRecurring,
		RecurrenceType: current.RecurrenceType,
		RecurrenceDays: current.Weekdays(),
	}

	if recurrence := current.Recurrence(); recurrence != nil && !recurrence.Until.IsZero() {
		merged.RecurrenceEndDate = timezone.FormatDate(recurrence.Until)
	}

	overlay(&merged.RequesterName, u.RequesterName)
	overlay(&merged.RequesterEmail, u.RequesterEmail)
	overlay(&merged.BookingDate, u.BookingDate)
	overlay(&merged.StartTime, u.StartTime)
	overlay(&merged.EndTime, u.EndTime)
	overlay(&merged.RecurrenceType, u.RecurrenceType)
	overlay(&merged.RecurrenceEndDate, u.RecurrenceEndDate)

	if u.Purpose != nil {
		merged.Purpose = *u.Purpose
	}

	if u.IsRecurring != nil {
		merged.IsRecurring = *u.IsRecurring
	}

	if u.RecurrenceDays != nil {
		merged.RecurrenceDays = u.RecurrenceDays
	}

	return merged
}

// CheckNotPast rejects an edit that moves the booking date or recurrence end before
// today. Untouched dates of an ongoing booking may already be in the past.
func (u *UpdateBookingRequest) CheckNotPast(slot Slot) error {
	if u.BookingDate != "" && timezone.IsPast(slot.Date) {
		return failure.BadRequestFromString("booking_date cannot be in the past")
	}

	if u.RecurrenceEndDate != "" && slot.Recurrence != nil && timezone.IsPast(slot.Recurrence.Until) {
		return failure.BadRequestFromString("recurrence_end_date cannot be in the past")
	}

	return nil
}

// UpdateFields lists the editable columns of booking for a repository update.
func UpdateFields(booking model.Booking, user string) map[string]any {
	return map[string]any{
		model.FieldRequesterName:     booking.RequesterName,
		model.FieldRequesterEmail:    booking.RequesterEmail,
		model.FieldPurpose:           booking.Purpose,
		model.FieldBookingDate:       booking.BookingDate,
		model.FieldStartTime:         booking.StartTime,
		model.FieldEndTime:           booking.EndTime,
		model.FieldIsRecurring:       booking.IsRecurring,
		model.FieldRecurrenceType:    booking.RecurrenceType,
		model.FieldRecurrenceEndDate: booking.RecurrenceEndDate,
		model.FieldRecurrenceDays:    booking.RecurrenceDays,
		constant.FieldModifiedAt:     timezone.Now(),
		constant.FieldModifiedBy:     user,
	}
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

type BookingResponse struct {
	ID                string `json:"id"`
	RoomID            string `json:"room_id"`
	RoomName          string `json:"room_name"`
	RequesterName     string `json:"requester_name"`
	RequesterEmail    string `json:"requester_email"`
	BookingDate       string `json:"booking_date"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Purpose           string `json:"purpose"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrenceType    string `json:"recurrence_type,omitempty"`
	RecurrenceEndDate string `json:"recurrence_end_date,omitempty"`
	RecurrenceDays    []int  `json:"recurrence_days"`
	RecurrenceInfo    string `json:"recurrence_info"`
	CalendarURL       string `json:"calendar_url,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	booking := model.Schedule()

	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RoomName = model.RoomName
	r.RequesterName = model.RequesterName
	r.RequesterEmail = model.RequesterEmail
	r.BookingDate = timezone.FormatDate(booking.Date)
	r.StartTime = model.StartTime.String()
	r.EndTime = model.EndTime.String()
	r.Purpose = model.Purpose
	r.IsRecurring = model.IsRecurring
	r.RecurrenceType = model.RecurrenceType
	r.RecurrenceDays = model.Weekdays()
	r.RecurrenceInfo = schedule.Describe(booking.Recurrence)
	r.CalendarURL = model.CalendarURL

	if booking.Recurrence != nil && !booking.Recurrence.Until.IsZero() {
		r.RecurrenceEndDate = timezone.FormatDate(booking.Recurrence.Until)
	}

	r.Metadata = gDto.NewMetadata(model.Metadata)
}

// SaveBookingResponse carries the stored booking and any side effect that failed
// after it was accepted.
type SaveBookingResponse struct {
	Booking  BookingResponse `json:"booking"`
	Warnings []string        `json:"warnings,omitempty"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// OccurrenceQuery bounds the occurrence feed of a room. Both ends are inclusive.
type OccurrenceQuery struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to"   validate:"omitempty,datetime=2006-01-02"`
}

type OccurrenceResponse struct {
	BookingID      string `json:"booking_id"`
	Date           string `json:"date"`
	Weekday        string `json:"weekday"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	RequesterName  string `json:"requester_name"`
	Purpose        string `json:"purpose"`
	RecurrenceInfo string `json:"recurrence_info"`
}

type GetOccurrencesResponse struct {
	RoomID      string               `json:"room_id"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

func windowFailure(err error) error {
	if errors.Is(err, schedule.ErrInvalidWindow) {
		return failure.BadRequest(schedule.ErrInvalidWindow)
	}

	return failure.BadRequest(schedule.ErrInvalidClock)
}

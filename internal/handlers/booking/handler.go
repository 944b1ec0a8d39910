package booking

import (
	"net/http"

	"roombook/infras/otel"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/service"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const calendarFileExtension = ".ics"

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms/{roomId}/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Get("/{id}/calendar.ics", handler.GetBookingCalendar)
		routerGroup.Patch("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
	})

	router.Get("/rooms/{roomId}/occurrences", handler.GetOccurrences)
}

// CreateBooking handles the creation of a new booking for a room.
// @Summary Create a new booking
// @Description Book a room once or on a daily, weekly or monthly schedule. The request is
// @Description rejected when any occurrence overlaps an existing booking of the room.
// @Tags Booking
// @Accept json
// @Produce json
// @Param roomId path string true "Room ID"
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.SaveBookingResponse] "Created booking and side effect warnings"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	roomID := chi.URLParam(request, constant.RequestParamRoomID)

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithFailure(writer, err, "validate request body")

		return
	}

	booking, err := handler.service.Create(ctx, roomID, req)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(writer, err, "create booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings retrieves the bookings of a room.
// @Summary Get bookings of a room
// @Tags Booking
// @Produce json
// @Param roomId path string true "Room ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings [get]
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.GetAll(ctx, roomID, queryParams)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "get bookings")

		return
	}

	scope.AddEvent("Bookings retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param roomId path string true "Room ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)
	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, roomID, id)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "get booking by ID")

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// GetBookingCalendar downloads the booking as an iCalendar file.
// @Summary Download a booking as iCalendar
// @Tags Booking
// @Produce text/calendar
// @Param roomId path string true "Room ID"
// @Param id path string true "Booking ID"
// @Success 200 {file} file "iCalendar file with one event per occurrence"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings/{id}/calendar.ics [get]
func (handler *Handler) GetBookingCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingCalendar")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)
	id := chi.URLParam(r, constant.RequestParamID)

	content, err := handler.service.Calendar(ctx, roomID, id)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "build booking calendar")

		return
	}

	scope.AddEvent("Booking calendar generated")

	response.WithAttachment(w, constant.ContentTypeCalendar, id+calendarFileExtension, content)
}

// UpdateBooking edits an existing booking. Schedule changes are checked for overlaps
// with the other bookings of the room.
// @Summary Update a booking by ID
// @Tags Booking
// @Accept json
// @Produce json
// @Param roomId path string true "Room ID"
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} response.Data[dto.SaveBookingResponse] "Updated booking and side effect warnings"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)
	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "validate request body")

		return
	}

	booking, err := handler.service.Update(ctx, roomID, id, req)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "update booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, booking)
}

// DeleteBooking deletes a booking by its ID.
// @Summary Delete a booking by ID
// @Tags Booking
// @Produce json
// @Param roomId path string true "Room ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, roomID, id); err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "delete booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}

// GetOccurrences lists the dated occurrences of every booking of a room in a range.
// @Summary Get room occurrences
// @Description Expands recurring bookings into concrete dates. The range defaults to
// @Description the configured feed window starting today.
// @Tags Booking
// @Produce json
// @Param roomId path string true "Room ID"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetOccurrencesResponse] "Occurrences in date order"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{roomId}/occurrences [get]
func (handler *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOccurrences")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamRoomID)

	query := dto.OccurrenceQuery{
		From: r.URL.Query().Get(constant.RequestParamFrom),
		To:   r.URL.Query().Get(constant.RequestParamTo),
	}

	if err := validator.ValidateStruct(&query); err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "validate occurrence query")

		return
	}

	occurrences, err := handler.service.Occurrences(ctx, roomID, query)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(w, err, "get room occurrences")

		return
	}

	scope.AddEvent("Room occurrences retrieved successfully")

	response.WithJSON(w, http.StatusOK, occurrences)
}

package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/infras/s3"
	"roombook/internal/domains/booking/calendar"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/repository"
	"roombook/internal/domains/booking/schedule"
	roomModel "roombook/internal/domains/room/model"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/timezone"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking     = model.CachePrefix + ":get"
	cacheGetAllBooking  = model.CachePrefix + ":gets"
	cacheCountBooking   = model.CachePrefix + ":count"
	cacheRoomOccurrence = model.CachePrefix + ":occurrences"

	calendarDirectory = "calendars"
	calendarExtension = ".ics"

	defaultFeedWindowDays    = 60
	defaultMaxRangeDays      = 366
	defaultMaxRecurrenceDays = 366

	errBookingNotFound = "booking not found"
	errRoomNotFound    = "room not found"
)

var sortableFields = []string{
	model.FieldBookingDate,
	model.FieldStartTime,
	model.FieldRequesterName,
	constant.FieldCreatedAt,
}

type Booking interface {
	Create(ctx context.Context, roomID string, req dto.CreateBookingRequest) (dto.SaveBookingResponse, error)
	GetAll(ctx context.Context, roomID string, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, roomID, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, roomID, id string, req dto.UpdateBookingRequest) (dto.SaveBookingResponse, error)
	Delete(ctx context.Context, roomID, id string) error
	Occurrences(ctx context.Context, roomID string, query dto.OccurrenceQuery) (dto.GetOccurrencesResponse, error)
	Calendar(ctx context.Context, roomID, id string) ([]byte, error)
}

type serviceImpl struct {
	repo  repository.Booking
	rooms roomRepo.Room
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
	kafka kafka.Client
}

func New(repo repository.Booking, rooms roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3, kafka kafka.Client) Booking {
	return &serviceImpl{
		repo:  repo,
		rooms: rooms,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
		kafka: kafka,
	}
}

// Create validates the request, checks it against a fresh snapshot of the room's
// bookings and stores it. Check and insert are not atomic: two concurrent requests for
// the same slot can both pass the check.
func (s *serviceImpl) Create(ctx context.Context, roomID string, req dto.CreateBookingRequest) (res dto.SaveBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	slot, err := req.Slot(s.maxRecurrenceDays())
	if err != nil {
		return res, err
	}

	if err = slot.NotPast(); err != nil {
		return res, err
	}

	room, err := s.room(ctx, roomID)
	if err != nil {
		return res, err
	}

	if err = s.checkAvailability(ctx, roomID, slot, constant.Empty); err != nil {
		return res, err
	}

	booking := req.ToModel(room.ID, room.Name, user, slot)

	if err = s.repo.Insert(ctx, booking); err != nil {
		if isForeignKeyViolation(err) {
			return res, failure.NotFound(errRoomNotFound)
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res.Warnings = s.afterSave(ctx, &booking, event.TypeCreated)
	res.Booking.FromModel(booking)

	s.invalidate(ctx, booking.ID)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, roomID string, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = model.FieldBookingDate, gDto.SortDirAsc
	}

	if !slices.Contains(sortableFields, req.SortBy) {
		return res, failure.BadRequestFromString("sort_by must be one of " + strings.Join(sortableFields, ", "))
	}

	if req.SortDir == constant.Empty {
		req.SortDir = gDto.SortDirAsc
	}

	filter := repository.ByRoom(roomID)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	if err = s.roomExists(ctx, roomID); err != nil {
		return res, err
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, roomID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, roomID, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.booking(ctx, roomID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// Update applies an admin edit. When dates or times change, the result is checked
// against every other booking of the room.
func (s *serviceImpl) Update(ctx context.Context, roomID, id string, req dto.UpdateBookingRequest) (res dto.SaveBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.booking(ctx, roomID, id)
	if err != nil {
		return res, err
	}

	merged := req.Merge(current)

	slot, err := merged.Slot(s.maxRecurrenceDays())
	if err != nil {
		return res, err
	}

	if err = req.CheckNotPast(slot); err != nil {
		return res, err
	}

	if req.ChangesSchedule() {
		if err = s.checkAvailability(ctx, roomID, slot, id); err != nil {
			return res, err
		}
	}

	updated := current
	updated.RequesterName = strings.TrimSpace(merged.RequesterName)
	updated.RequesterEmail = strings.TrimSpace(merged.RequesterEmail)
	updated.Purpose = strings.TrimSpace(merged.Purpose)
	updated.ModifiedBy = user
	updated.ModifiedAt = timezone.Now()
	dto.ApplySlot(&updated, slot)

	if err = s.repo.Update(ctx, dto.UpdateFields(updated, user), repository.ByRoomAndID(roomID, id)); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	res.Warnings = s.afterSave(ctx, &updated, event.TypeUpdated)
	res.Booking.FromModel(updated)

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, roomID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.booking(ctx, roomID, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, repository.ByRoomAndID(roomID, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if booking.CalendarURL != constant.Empty {
		if key := s.s3.KeyFromURL(booking.CalendarURL); key != constant.Empty {
			if err := s.s3.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("booking", id).Msg("failed to delete calendar file")
			}
		}
	}

	s.invalidate(ctx, id)

	return nil
}

// Occurrences expands every booking of the room into the dated occurrences that fall
// inside the requested range. The range defaults to the configured feed window
// starting today.
func (s *serviceImpl) Occurrences(ctx context.Context, roomID string, query dto.OccurrenceQuery) (res dto.GetOccurrencesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Occurrences")
	defer scope.End()
	defer scope.TraceIfError(err)

	from, to, err := s.feedRange(query)
	if err != nil {
		return res, err
	}

	res.RoomID = roomID
	res.From = timezone.FormatDate(from)
	res.To = timezone.FormatDate(to)

	cacheKey := shared.BuildCacheKey(cacheRoomOccurrence, roomID, res.From, res.To)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room occurrences")

		return res, nil
	}

	if err = s.roomExists(ctx, roomID); err != nil {
		return res, err
	}

	bookings, err := s.repo.GetAll(ctx, gDto.QueryParams{}, repository.ActiveBetween(roomID, res.From, res.To))
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for occurrences")

		return res, fmt.Errorf("failed to get bookings for occurrences: %w", err)
	}

	res.Occurrences = expandOccurrences(bookings, from, to)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room occurrences to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Calendar(ctx context.Context, roomID, id string) (res []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Calendar")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.booking(ctx, roomID, id)
	if err != nil {
		return nil, err
	}

	content, err := calendar.Build(booking, timezone.Now())
	if err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to build calendar")

		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	return []byte(content), nil
}

func (s *serviceImpl) checkAvailability(ctx context.Context, roomID string, slot dto.Slot, exclude string) error {
	dates, err := slot.Occurrences()
	if err != nil {
		return failure.BadRequest(err)
	}

	from, to := timezone.FormatDate(slot.Date), timezone.FormatDate(slot.Last())

	existing, err := s.repo.GetAll(ctx, gDto.QueryParams{}, repository.ActiveBetween(roomID, from, to))
	if err != nil {
		log.Error().Err(err).Msg("failed to load room bookings")

		return fmt.Errorf("failed to load room bookings: %w", err)
	}

	reservations, err := schedule.Expand(model.Schedules(existing), exclude)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to expand room bookings")

		return fmt.Errorf("failed to expand room bookings: %w", err)
	}

	conflict, err := schedule.CheckAvailability(reservations, dates, slot.Window)
	if err != nil {
		return failure.BadRequest(err)
	}

	if conflict != nil {
		return failure.Conflict(conflict.String())
	}

	return nil
}

// afterSave exports the calendar file and queues the notification. Failures never undo
// the saved booking and are returned as warnings.
func (s *serviceImpl) afterSave(ctx context.Context, booking *model.Booking, eventType string) []string {
	verb := "created"
	if eventType == event.TypeUpdated {
		verb = "updated"
	}

	warnings := []string{}

	if err := s.exportCalendar(ctx, booking); err != nil {
		log.Warn().Err(err).Str("booking", booking.ID).Msg("calendar export failed")

		warnings = append(warnings, fmt.Sprintf("booking %s, calendar export failed", verb))
	}

	envelope := event.New(eventType, *booking, schedule.Describe(booking.Recurrence()))

	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Booking, envelope.Message()); err != nil {
		log.Warn().Err(err).Str("booking", booking.ID).Msg("failed to queue booking notification")

		warnings = append(warnings, fmt.Sprintf("booking %s, notification could not be queued", verb))
	}

	return warnings
}

func (s *serviceImpl) exportCalendar(ctx context.Context, booking *model.Booking) error {
	content, err := calendar.Build(*booking, timezone.Now())
	if err != nil {
		return fmt.Errorf("failed to build calendar: %w", err)
	}

	url, err := s.s3.Put(ctx, calendarKey(booking.ID), constant.ContentTypeCalendar, []byte(content))
	if err != nil {
		return fmt.Errorf("failed to upload calendar: %w", err)
	}

	if url == booking.CalendarURL {
		return nil
	}

	fields := map[string]any{model.FieldCalendarURL: url}
	if err = s.repo.Update(ctx, fields, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		return fmt.Errorf("failed to store calendar url: %w", err)
	}

	booking.CalendarURL = url

	return nil
}

func (s *serviceImpl) maxRecurrenceDays() int {
	if s.cfg.Booking.MaxRecurrenceDays <= 0 {
		return defaultMaxRecurrenceDays
	}

	return s.cfg.Booking.MaxRecurrenceDays
}

func (s *serviceImpl) feedRange(query dto.OccurrenceQuery) (from, to time.Time, err error) {
	windowDays := s.cfg.Booking.FeedWindowDays
	if windowDays <= 0 {
		windowDays = defaultFeedWindowDays
	}

	maxDays := s.cfg.Booking.MaxRangeDays
	if maxDays <= 0 {
		maxDays = defaultMaxRangeDays
	}

	from = timezone.Today()
	if query.From != constant.Empty {
		if from, err = timezone.ParseDate(query.From); err != nil {
			return from, to, failure.BadRequestFromString("from must be a valid date in YYYY-MM-DD format")
		}
	}

	to = from.AddDate(0, 0, windowDays-1)
	if query.To != constant.Empty {
		if to, err = timezone.ParseDate(query.To); err != nil {
			return from, to, failure.BadRequestFromString("to must be a valid date in YYYY-MM-DD format")
		}
	}

	if to.Before(from) {
		return from, to, failure.BadRequestFromString("to cannot be before from")
	}

	if to.After(from.AddDate(0, 0, maxDays-1)) {
		return from, to, failure.BadRequestFromString(fmt.Sprintf("range cannot exceed %d days", maxDays))
	}

	return from, to, nil
}

func (s *serviceImpl) room(ctx context.Context, roomID string) (roomModel.Room, error) {
	room, err := s.rooms.Get(ctx, roomRepo.ByID(roomID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound(errRoomNotFound)
	}

	return room, nil
}

func (s *serviceImpl) roomExists(ctx context.Context, roomID string) error {
	exist, err := s.rooms.Exist(ctx, roomRepo.ByID(roomID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return fmt.Errorf("failed to check room existence: %w", err)
	}

	if !exist {
		return failure.NotFound(errRoomNotFound)
	}

	return nil
}

func (s *serviceImpl) booking(ctx context.Context, roomID, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, repository.ByRoomAndID(roomID, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(errBookingNotFound)
	}

	return booking, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, model.CachePrefix)
		log.Debug().Str("booking", id).Msg("booking caches invalidated")
	}()
}

func calendarKey(id string) string {
	return path.Join(calendarDirectory, id+calendarExtension)
}

func expandOccurrences(bookings []model.Booking, from, to time.Time) []dto.OccurrenceResponse {
	occurrences := []dto.OccurrenceResponse{}

	for _, booking := range bookings {
		view := booking.Schedule()

		dates, err := view.Occurrences()
		if err != nil {
			log.Warn().Err(err).Str("booking", booking.ID).Msg("skipping booking with invalid recurrence")

			continue
		}

		info := schedule.Describe(view.Recurrence)

		for _, date := range dates {
			if date.Before(from) || date.After(to) {
				continue
			}

			occurrences = append(occurrences, dto.OccurrenceResponse{
				BookingID:      booking.ID,
				Date:           timezone.FormatDate(date),
				Weekday:        schedule.WeekdayShortName(date.Weekday()),
				StartTime:      view.Window.Start.String(),
				EndTime:        view.Window.End.String(),
				RequesterName:  booking.RequesterName,
				Purpose:        booking.Purpose,
				RecurrenceInfo: info,
			})
		}
	}

	slices.SortStableFunc(occurrences, func(a, b dto.OccurrenceResponse) int {
		if a.Date != b.Date {
			return strings.Compare(a.Date, b.Date)
		}

		return strings.Compare(a.StartTime, b.StartTime)
	})

	return occurrences
}

// isForeignKeyViolation reports a booking whose room was deleted after the lookup.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeFkViolation
}

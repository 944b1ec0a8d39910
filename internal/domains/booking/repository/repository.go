package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/model"
	gDto "roombook/shared/dto"
	gRepo "roombook/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
}

// ByRoom matches every booking of a room.
func ByRoom(roomID string) gDto.FilterGroup {
	return gDto.And(column(model.FieldRoomID, roomID, gDto.FilterOperatorEq))
}

// ByRoomAndID scopes a booking lookup to its room so ids from other rooms miss.
func ByRoomAndID(roomID, id string) gDto.FilterGroup {
	return gDto.And(
		column(model.FieldID, id, gDto.FilterOperatorEq),
		column(model.FieldRoomID, roomID, gDto.FilterOperatorEq),
	)
}

// ActiveBetween matches bookings of a room that start on or before to and are still
// live on from: one-off bookings dated inside the window and recurring series whose
// end date reaches it. Dates are YYYY-MM-DD.
func ActiveBetween(roomID, from, to string) gDto.FilterGroup {
	windowTo := column(model.FieldBookingDate, to, gDto.FilterOperatorLessEq)
	windowTo.ArgName = "window_to"

	startsInside := column(model.FieldBookingDate, from, gDto.FilterOperatorGreaterEq)
	startsInside.ArgName = "window_from"

	recursInto := column(model.FieldRecurrenceEndDate, from, gDto.FilterOperatorGreaterEq)
	recursInto.ArgName = "window_from_recurring"

	return gDto.And(
		column(model.FieldRoomID, roomID, gDto.FilterOperatorEq),
		windowTo,
		gDto.Or(startsInside, recursInto),
	)
}

func column(field string, value any, operator string) gDto.Filter {
	return gDto.Filter{Field: field, Value: value, Operator: operator, Table: model.TableName}
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	repo := gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel)

	return &repo
}

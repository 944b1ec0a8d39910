package room_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/room/mocks"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/handlers/room"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
)

func newServer(t *testing.T) (*httpexpect.Expect, *mocks.MockRoomService) {
	t.Helper()

	svc := mocks.NewMockRoomService(gomock.NewController(t))
	handler := room.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return httpexpect.Default(t, server.URL), svc
}

func TestHandler_CreateRoom(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().
			Create(gomock.Any(), dto.CreateRoomRequest{Name: "Orchid"}).
			Return(dto.RoomResponse{ID: "r1", Name: "Orchid"}, nil)

		obj := e.POST("/v1/rooms").WithJSON(map[string]any{"name": "Orchid"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object().Value("data").Object()

		obj.Value("id").IsEqual("r1")
		obj.Value("name").IsEqual("Orchid")
	})

	t.Run("name is required", func(t *testing.T) {
		e, _ := newServer(t)

		e.POST("/v1/rooms").WithJSON(map[string]any{}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().Value("error").IsEqual("name is required")
	})

	t.Run("duplicate name", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.RoomResponse{}, failure.Conflict("room name already exists"))

		e.POST("/v1/rooms").WithJSON(map[string]any{"name": "Orchid"}).
			Expect().
			Status(http.StatusConflict)
	})
}

func TestHandler_GetRooms(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gDto.QueryParams{Page: 2, Limit: 5}, dto.SearchFilter("orch")).
		Return(dto.GetRoomsResponse{Rooms: []dto.RoomResponse{{ID: "r1", Name: "Orchid"}}, TotalData: 6, TotalPage: 2}, nil)

	obj := e.GET("/v1/rooms").
		WithQuery("page", 2).
		WithQuery("limit", 5).
		WithQuery("name", " orch ").
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object()

	obj.Value("total_data").IsEqual(6)
	obj.Value("rooms").Array().Length().IsEqual(1)
}

func TestHandler_GetRoomByID(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().Get(gomock.Any(), "missing").Return(dto.RoomResponse{}, failure.NotFound("room not found"))

	e.GET("/v1/rooms/missing").
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().Value("error").IsEqual("room not found")
}

func TestHandler_RenameRoom(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().Rename(gomock.Any(), dto.RenameRoomRequest{Name: "Lotus"}, "r1").Return(nil)

	e.PATCH("/v1/rooms/r1").WithJSON(map[string]any{"name": "Lotus"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("message").IsEqual("Room updated successfully")
}

func TestHandler_DeleteRoom(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().Delete(gomock.Any(), "r1").Return(errors.New("connection reset"))

	e.DELETE("/v1/rooms/r1").
		Expect().
		Status(http.StatusInternalServerError)
}

package dto

import (
	"strings"

	"roombook/internal/domains/room/model"
	"roombook/shared"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	now := timezone.Now()

	return model.Room{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(c.Name),
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type RenameRoomRequest struct {
	Name string `db:"name" json:"name" validate:"required,max=100"`
}

type RoomResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Metadata = gDto.NewMetadata(model.Metadata)
}

// SearchFilter matches rooms whose name contains query, ignoring case. A blank
// query matches every room.
func SearchFilter(query string) gDto.FilterGroup {
	query = strings.TrimSpace(query)
	if query == "" {
		return gDto.And()
	}

	return gDto.And(gDto.Filter{
		Field:    model.FieldName,
		Operator: gDto.FilterOperatorLike,
		Value:    query,
		Table:    model.TableName,
	})
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

package model

import "roombook/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID   = "id"
	FieldName = "name"
)

type Room struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	model.Metadata
}

package dto

import (
	"roombook/shared/constant"
	"roombook/shared/model"
	"roombook/shared/timezone"
)

// Metadata is the audit trail rendered in UTC+7. Modification fields are omitted
// when the record carries none.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedAt string `json:"modified_at,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func NewMetadata(metadata model.Metadata) Metadata {
	res := Metadata{
		CreatedAt: timezone.Format(metadata.CreatedAt, constant.DateFormat),
		CreatedBy: metadata.CreatedBy,
	}

	if !metadata.ModifiedAt.IsZero() {
		res.ModifiedAt = timezone.Format(metadata.ModifiedAt, constant.DateFormat)
		res.ModifiedBy = metadata.ModifiedBy
	}

	return res
}

package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/model"
)

func TestNewMetadata(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metadata model.Metadata
		want     dto.Metadata
	}{
		{
			name: "rendered in UTC+7",
			metadata: model.Metadata{
				CreatedAt:  createdAt,
				ModifiedAt: createdAt.Add(time.Hour),
				CreatedBy:  "admin-1",
				ModifiedBy: "admin-2",
			},
			want: dto.Metadata{
				CreatedAt:  "2024-01-02T03:00:00+07:00",
				CreatedBy:  "admin-1",
				ModifiedAt: "2024-01-02T04:00:00+07:00",
				ModifiedBy: "admin-2",
			},
		},
		{
			name:     "no modification recorded",
			metadata: model.Metadata{CreatedAt: createdAt, CreatedBy: "admin-1", ModifiedBy: "ignored"},
			want:     dto.Metadata{CreatedAt: "2024-01-02T03:00:00+07:00", CreatedBy: "admin-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dto.NewMetadata(tt.metadata))
		})
	}
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		want         dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=2&limit=20&sort_by=name&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing without defaults",
		},
		{
			name:         "malformed numbers fall back",
			query:        "page=abc&limit=-10",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown sort direction is dropped",
			query: "sort_by=booking_date&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "booking_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/rooms?"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(request, tt.withDefaults)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equality on a table column",
			filter:    dto.Filter{Field: "room_id", Value: "r1", Operator: dto.FilterOperatorEq, Table: "room_bookings"},
			wantWhere: "room_bookings.room_id = :room_id",
			wantArgs:  map[string]any{"room_id": "r1"},
		},
		{
			name:      "case-insensitive substring",
			filter:    dto.Filter{Field: "name", Value: "Orch", Operator: dto.FilterOperatorLike},
			wantWhere: "LOWER(name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": "%Orch%"},
		},
		{
			name:      "custom argument name",
			filter:    dto.Filter{ArgName: "window_end", Field: "booking_date", Value: "2024-03-01", Operator: dto.FilterOperatorLessEq},
			wantWhere: "booking_date <= :window_end",
			wantArgs:  map[string]any{"window_end": "2024-03-01"},
		},
		{
			name:      "exclusion",
			filter:    dto.Filter{Field: "id", Value: "b1", Operator: dto.FilterOperatorNotEq},
			wantWhere: "id != :id",
			wantArgs:  map[string]any{"id": "b1"},
		},
		{
			name:     "unknown operator yields nothing",
			filter:   dto.Filter{Field: "id", Value: "b1", Operator: "between"},
			wantArgs: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.And(
		dto.Filter{Field: "room_id", Value: "r1", Operator: dto.FilterOperatorEq},
		dto.Or(
			dto.Filter{ArgName: "from_end", Field: "recurrence_end_date", Value: "2024-01-08", Operator: dto.FilterOperatorGreaterEq},
			dto.Filter{ArgName: "from_date", Field: "booking_date", Value: "2024-01-08", Operator: dto.FilterOperatorGreaterEq},
		),
		dto.Filter{Field: "ignored", Operator: "unknown"},
		"not a filter",
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(room_id = :room_id AND (recurrence_end_date >= :from_end OR booking_date >= :from_date))", where)
	assert.Equal(t, map[string]any{"room_id": "r1", "from_end": "2024-01-08", "from_date": "2024-01-08"}, args)

	empty, emptyArgs := dto.FilterGroup{}.GetWhereClause()
	assert.Empty(t, empty)
	assert.Empty(t, emptyArgs)

	implicit, _ := dto.FilterGroup{Filters: []any{
		dto.Filter{Field: "a", Value: 1, Operator: dto.FilterOperatorEq},
		dto.Filter{Field: "b", Value: 2, Operator: dto.FilterOperatorEq},
	}}.GetWhereClause()
	assert.Equal(t, "(a = :a AND b = :b)", implicit)
}

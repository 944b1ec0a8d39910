package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roombook/shared"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "no rows", total: 0, limit: 10, want: 1},
		{name: "no limit", total: 100, limit: 0, want: 1},
		{name: "negative limit", total: 100, limit: -5, want: 1},
		{name: "exact", total: 100, limit: 10, want: 10},
		{name: "remainder", total: 101, limit: 10, want: 11},
		{name: "single page", total: 5, limit: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type rename struct {
		Name     string  `db:"name"`
		Capacity int     `db:"capacity"`
		Note     *string `db:"note"`
		Internal string  `db:"-"`
		Untagged string
	}

	now := time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC)
	restore := timezone.SetNow(func() time.Time { return now })
	t.Cleanup(restore)

	empty := ""

	tests := []struct {
		name string
		data rename
		want map[string]any
	}{
		{
			name: "populated fields only",
			data: rename{Name: "Orchid", Internal: "skip", Untagged: "skip"},
			want: map[string]any{"name": "Orchid"},
		},
		{
			name: "non-nil pointer to a zero value is kept",
			data: rename{Capacity: 12, Note: &empty},
			want: map[string]any{"capacity": 12, "note": &empty},
		},
		{
			name: "nothing to change",
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shared.TransformFields(tt.data, "admin-1")

			assert.Equal(t, "admin-1", got[constant.FieldModifiedBy])
			assert.True(t, now.Equal(got[constant.FieldModifiedAt].(time.Time)))

			delete(got, constant.FieldModifiedBy)
			delete(got, constant.FieldModifiedAt)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterByID(t *testing.T) {
	got := shared.FilterByID("r-1", "id", "rooms")

	assert.Equal(t, dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "rooms"},
		},
	}, got)

	where, args := got.GetWhereClause()
	assert.Equal(t, "(rooms.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "r-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "room:get", shared.BuildCacheKey("room:get"))
	assert.Equal(t, "room:get:abc", shared.BuildCacheKey("room:get", "abc"))
	assert.Equal(t, "limiter:1.2.3.4:curl", shared.BuildCacheKey("limiter", "1.2.3.4", "curl"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := shared.FilterByField("room_id", "r-1", "room_bookings")

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	other := shared.BuildCacheKeyWithQuery("booking:gets", params, shared.FilterByField("room_id", "r-2", "room_bookings"))

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.True(t, strings.HasPrefix(first, "booking:gets:"))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), "room:gets:*").Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), "room:count:*").Return(errors.New("redis down"))

	shared.InvalidateCaches(context.Background(), mockCache, "room:gets")
	shared.InvalidateCaches(context.Background(), mockCache, "room:count")
}

package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roombook/internal/domains/booking/repository"
)

func TestFilters(t *testing.T) {
	tests := []struct {
		name      string
		where     func() (string, map[string]any)
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "by room",
			where:     repository.ByRoom("r1").GetWhereClause,
			wantWhere: "(room_bookings.room_id = :room_id)",
			wantArgs:  map[string]any{"room_id": "r1"},
		},
		{
			name:      "by room and id",
			where:     repository.ByRoomAndID("r1", "b1").GetWhereClause,
			wantWhere: "(room_bookings.id = :id AND room_bookings.room_id = :room_id)",
			wantArgs:  map[string]any{"id": "b1", "room_id": "r1"},
		},
		{
			name:  "active between",
			where: repository.ActiveBetween("r1", "2024-01-08", "2024-01-14").GetWhereClause,
			wantWhere: "(room_bookings.room_id = :room_id AND room_bookings.booking_date <= :window_to AND " +
				"(room_bookings.booking_date >= :window_from OR room_bookings.recurrence_end_date >= :window_from_recurring))",
			wantArgs: map[string]any{
				"room_id":               "r1",
				"window_to":             "2024-01-14",
				"window_from":           "2024-01-08",
				"window_from_recurring": "2024-01-08",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.where()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

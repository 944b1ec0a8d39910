package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/permissions"
	"roombook/shared/constant"
)

func TestGet(t *testing.T) {
	data := permissions.Get()

	require.NotNil(t, data)
	assert.False(t, data.Skip)
	assert.NotEmpty(t, data.Endpoints)
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantSkip  bool
		wantRoles []string
	}{
		{name: "public room list with mount slash", path: "/v1/rooms/", method: "GET", wantSkip: true},
		{name: "admin only room creation", path: "/v1/rooms/", method: "POST", wantRoles: []string{constant.RoleAdmin, constant.RoleSuperAdmin}},
		{name: "any user can book", path: "/v1/rooms/{roomId}/bookings/", method: "POST", wantRoles: []string{}},
		{name: "admin edits bookings", path: "/v1/rooms/{roomId}/bookings/{id}", method: "PATCH", wantRoles: []string{constant.RoleAdmin, constant.RoleSuperAdmin}},
		{name: "public calendar file", path: "/v1/rooms/{roomId}/bookings/{id}/calendar.ics", method: "GET", wantSkip: true},
		{name: "relay is public", path: "/v1/relay", method: "post", wantSkip: true},
		{name: "unknown route", path: "/v1/unknown", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)
			assert.Equal(t, tt.wantRoles, permission.Permissions)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := permissions.Parse([]byte("{"))

	assert.Error(t, err)
}

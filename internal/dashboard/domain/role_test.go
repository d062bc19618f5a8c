package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("aliases map to canonical roles", func(t *testing.T) {
		require.Equal(t, RoleAdministrator, Normalize("admin"))
		require.Equal(t, RoleAdministrator, Normalize("admins"))
		require.Equal(t, RoleModerator, Normalize("mod"))
	})

	t.Run("canonical roles are fixed points", func(t *testing.T) {
		for _, r := range Roles() {
			require.Equal(t, r, Normalize(string(r)))
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, raw := range []string{"admin", "admins", "mod", "member", "Admin", "", "superuser"} {
			once := Normalize(raw)
			require.Equal(t, once, Normalize(string(once)), "input %q", raw)
		}
	})

	t.Run("case-sensitive passthrough", func(t *testing.T) {
		require.Equal(t, Role("Admin"), Normalize("Admin"))
		require.False(t, Normalize("Admin").Valid())
	})
}

func TestParseRouteRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Role
	}{
		{"guest", RoleGuest},
		{"critic", RoleCritic},
		{"admin", RoleAdministrator},
		{"mod", RoleModerator},
		{"owner", RoleMember},
		{"", RoleMember},
		{"MEMBER", RoleMember},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ParseRouteRole(tt.raw), "input %q", tt.raw)
	}
}

func TestRolesAreValid(t *testing.T) {
	require.Len(t, Roles(), 5)
	for _, r := range Roles() {
		require.True(t, r.Valid())
	}
	require.False(t, Role("admin").Valid())
}

package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(RoleUser))
	assert.Equal(t, 1, Rank(RoleAdmin))
	assert.Equal(t, 2, Rank(RoleSuperadmin))
	assert.Equal(t, -1, Rank("moderator"))
	assert.Equal(t, -1, Rank(""))
}

func TestIsAuthorized(t *testing.T) {
	tests := []struct {
		name     string
		userRole string
		required string
		want     bool
	}{
		{"unrestricted admits user", RoleUser, RoleUnrestricted, true},
		{"unrestricted admits unknown role", "moderator", RoleUnrestricted, true},
		{"exact match", RoleAdmin, RoleAdmin, true},
		{"higher rank passes", RoleSuperadmin, RoleAdmin, true},
		{"lower rank denied", RoleUser, RoleAdmin, false},
		{"unknown user role denied", "moderator", RoleUser, false},
		{"unknown required role denies everyone", RoleSuperadmin, "owner", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthorized(tt.userRole, tt.required))
		})
	}
}

func TestMinimumRole(t *testing.T) {
	assert.Equal(t, RoleUnrestricted, MinimumRole([]string{"all"}))
	assert.Equal(t, RoleUnrestricted, MinimumRole([]string{"superadmin", "all"}))
	assert.Equal(t, RoleAdmin, MinimumRole([]string{"admin", "superadmin"}))
	assert.Equal(t, RoleUser, MinimumRole([]string{"superadmin", "user"}))
	assert.Equal(t, RoleAdmin, MinimumRole(nil))
	assert.Equal(t, RoleAdmin, MinimumRole([]string{"moderator"}))
}

func TestRoleInAllowedSet(t *testing.T) {
	assert.False(t, RoleInAllowedSet(RoleSuperadmin, nil), "empty set denies everyone")
	assert.True(t, RoleInAllowedSet(RoleUser, []string{"all"}))
	assert.True(t, RoleInAllowedSet("moderator", []string{"all"}), "wildcard admits unknown roles")
	assert.True(t, RoleInAllowedSet(RoleSuperadmin, []string{"admin"}), "outranking a member admits")
	assert.False(t, RoleInAllowedSet(RoleUser, []string{"admin", "superadmin"}))
	assert.False(t, RoleInAllowedSet("moderator", []string{"user"}), "unknown role outranks nothing")
}

func TestAccessControlRoleDefaults(t *testing.T) {
	access := newTestAccess(t)

	role, err := access.Role(42)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role, "unseen users default to user")
}

func TestAccessControlSetRole(t *testing.T) {
	access := newTestAccess(t)

	require.NoError(t, access.SetRole(1, RoleSuperadmin))
	role, err := access.Role(1)
	require.NoError(t, err)
	assert.Equal(t, RoleSuperadmin, role)

	assert.Error(t, access.SetRole(1, "owner"))
}

func TestPromote(t *testing.T) {
	const (
		superadmin = int64(1)
		admin      = int64(2)
		target     = int64(3)
	)

	t.Run("superadmin promotes to admin", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(superadmin, RoleSuperadmin))

		ok, err := access.Promote(target, RoleAdmin, superadmin)
		require.NoError(t, err)
		assert.True(t, ok)

		role, err := access.Role(target)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})

	t.Run("nobody can mint a peer", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(superadmin, RoleSuperadmin))

		ok, err := access.Promote(target, RoleSuperadmin, superadmin)
		require.NoError(t, err)
		assert.False(t, ok, "superadmin must not grant superadmin")

		role, err := access.Role(target)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, role)
	})

	t.Run("admin cannot promote to admin", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(admin, RoleAdmin))

		ok, err := access.Promote(target, RoleAdmin, admin)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("plain user cannot promote anyone", func(t *testing.T) {
		access := newTestAccess(t)

		ok, err := access.Promote(target, RoleAdmin, 99)
		require.NoError(t, err)
		assert.False(t, ok)

		role, err := access.Role(target)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, role, "role store unchanged after denied promotion")
	})

	t.Run("invalid role rejected without store access", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(superadmin, RoleSuperadmin))

		ok, err := access.Promote(target, "owner", superadmin)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDemote(t *testing.T) {
	const (
		superadmin = int64(1)
		admin      = int64(2)
		target     = int64(3)
	)

	t.Run("steps down one rank", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(superadmin, RoleSuperadmin))
		require.NoError(t, access.SetRole(target, RoleAdmin))

		ok, err := access.Demote(target, superadmin)
		require.NoError(t, err)
		assert.True(t, ok)

		role, err := access.Role(target)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, role)
	})

	t.Run("already at lowest rank", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(superadmin, RoleSuperadmin))

		ok, err := access.Demote(target, superadmin)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("actor must outrank target", func(t *testing.T) {
		access := newTestAccess(t)
		require.NoError(t, access.SetRole(admin, RoleAdmin))
		require.NoError(t, access.SetRole(target, RoleAdmin))

		ok, err := access.Demote(target, admin)
		require.NoError(t, err)
		assert.False(t, ok, "admin peers cannot demote each other")

		role, err := access.Role(target)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})
}

package store

import (
	"testing"

	"strength-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndAuthenticate(t *testing.T) {
	s := NewUserStore(openTestDB(t))

	created, err := s.Create("ana", "hunter2", models.RoleUser, []string{"live", "history"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "hunter2", created.PasswordHash, "secret must never be stored verbatim")

	user, err := s.Authenticate("ana", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, []string{"live", "history"}, user.PermissionList())
}

func TestUserStore_AuthenticateWrongSecret(t *testing.T) {
	s := NewUserStore(openTestDB(t))
	_, err := s.Create("ana", "hunter2", models.RoleUser, nil)
	require.NoError(t, err)

	_, err = s.Authenticate("ana", "hunter3")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserStore_AuthenticateUnknownUser(t *testing.T) {
	s := NewUserStore(openTestDB(t))

	_, err := s.Authenticate("nobody", "whatever")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserStore_UsernameUnique(t *testing.T) {
	s := NewUserStore(openTestDB(t))
	_, err := s.Create("ana", "one", models.RoleUser, nil)
	require.NoError(t, err)

	_, err = s.Create("ana", "two", models.RoleUser, nil)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserStore_DeleteProtectsAdmin(t *testing.T) {
	s := NewUserStore(openTestDB(t))
	admin, err := s.Create(models.AdminUsername, "secret", models.RoleAdmin, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(admin.ID), ErrProtectedUser)

	users, err := s.List()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserStore_DeleteIsHard(t *testing.T) {
	s := NewUserStore(openTestDB(t))
	user, err := s.Create("ana", "secret", models.RoleUser, nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(user.ID))
	assert.ErrorIs(t, s.Delete(user.ID), ErrNotFound)

	users, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	other, err := HashSecret("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")
}

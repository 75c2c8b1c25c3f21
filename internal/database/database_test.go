package database

import (
	"path/filepath"
	"testing"

	"strength-tracker/internal/models"
	"strength-tracker/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tracker.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedAdmin_CreatesAccount(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedAdmin(db, "s3cret"))

	user, err := store.NewUserStore(db).Authenticate(models.AdminUsername, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, []string{"live", "excel", "terminal", "history"}, user.PermissionList())
}

func TestSeedAdmin_RequiresPasswordOnFirstBoot(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, SeedAdmin(db, ""))
}

func TestSeedAdmin_RefreshesPassword(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedAdmin(db, "old"))
	require.NoError(t, SeedAdmin(db, "new"))

	users := store.NewUserStore(db)
	_, err := users.Authenticate(models.AdminUsername, "old")
	assert.ErrorIs(t, err, store.ErrUnauthorized)
	_, err = users.Authenticate(models.AdminUsername, "new")
	assert.NoError(t, err)

	// Still exactly one admin row.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeedAdmin_EmptyPasswordKeepsExistingHash(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedAdmin(db, "keep"))
	require.NoError(t, SeedAdmin(db, ""))

	_, err := store.NewUserStore(db).Authenticate(models.AdminUsername, "keep")
	assert.NoError(t, err)
}

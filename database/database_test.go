// database_test.go - Tests for connection setup, migrations and the bootstrap admin

package database

import (
	"path/filepath"
	"testing"

	"go-marketplace-backend/config"
	"go-marketplace-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "test.db?_foreign_keys=on", withForeignKeys("test.db"))
	assert.Equal(t, "test.db?cache=shared&_foreign_keys=on", withForeignKeys("test.db?cache=shared"))
	assert.Equal(t, "test.db?_fk=1", withForeignKeys("test.db?_fk=1"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestConnectCreatesDefaultAdmin(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		AdminUserID: "admin_1",
		AdminEmail:  "admin@test.com",
	}
	require.NoError(t, Connect(cfg))

	var admin models.User
	require.NoError(t, DB.First(&admin, "id = ?", "admin_1").Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// running again must not duplicate or fail
	require.NoError(t, Connect(cfg))
	var count int64
	DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConnectPromotesExistingUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "Ada", Email: "a@x.com", Role: models.RoleUser}).Error)

	cfg := &config.Config{DBDriver: "sqlite", DBPath: path, AdminUserID: "u1", AdminEmail: "a@x.com"}
	require.NoError(t, Connect(cfg))

	var u models.User
	require.NoError(t, DB.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestUniqueEmailIsEnforcedByStore(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "A", Email: "a@x.com", Role: models.RoleUser}).Error)
	err = db.Create(&models.User{ID: "u2", Name: "B", Email: "a@x.com", Role: models.RoleUser}).Error
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsForeignKeyViolation(err))
}

func TestSubCategoryForeignKeyIsEnforced(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	err = db.Create(&models.SubCategory{ID: "s1", Name: "Phones", URL: "phones", Image: "i", CategoryID: "missing"}).Error
	assert.True(t, IsForeignKeyViolation(err))
}

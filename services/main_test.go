package services

import (
	"path/filepath"
	"testing"

	"go-marketplace-backend/database"
	"go-marketplace-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	admin  = &Caller{UserID: "admin_1", Email: "admin@test.com", Role: models.RoleAdmin}
	seller = &Caller{UserID: "seller_1", Email: "seller@test.com", Role: models.RoleSeller}
	buyer  = &Caller{UserID: "user_1", Email: "user@test.com", Role: models.RoleUser}
)

// setupTestDB - Creates a fresh SQLite file database for one test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	for _, c := range []*Caller{admin, seller, buyer} {
		require.NoError(t, db.Create(&models.User{ID: c.UserID, Name: "Test", Email: c.Email, Role: c.Role}).Error)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

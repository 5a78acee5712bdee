// users.go - User reconciliation from identity events and admin role management

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-marketplace-backend/models"
	"go-marketplace-backend/outbox"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncInput is the provider's view of one user.
type SyncInput struct {
	ID      string // provider user id
	Email   string
	Name    string
	Picture string
}

// SyncUser reconciles a provider user into the users table, keyed by email.
// A new email inserts a USER row; an existing email only refreshes name and picture, so the
// locally stored role is never overwritten. The stored role is queued for the provider in the
// same transaction and returned with the user.
func SyncUser(ctx context.Context, db *gorm.DB, in SyncInput) (*models.User, *models.RoleSync, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.ID == "":
		return nil, nil, invalid("id", "is required")
	case in.Email == "":
		return nil, nil, invalid("email", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = "User"
	}

	var user models.User
	var sync *models.RoleSync
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := moveEmail(tx, in)
		if err != nil {
			return err
		}
		if !moved {
			row := models.User{ID: in.ID, Name: in.Name, Email: in.Email, Picture: in.Picture, Role: models.RoleUser}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "picture", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upsert user: %w", err)
			}
		}

		if err := tx.First(&user, "email = ?", in.Email).Error; err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		sync, err = outbox.Record(tx, in.ID, user.Role)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, sync, nil
}

// moveEmail handles a primary email change at the provider: the row with the provider id gets
// the new address when nobody else uses it. It reports whether the row was updated.
func moveEmail(tx *gorm.DB, in SyncInput) (bool, error) {
	var current models.User
	err := tx.Select("id", "email").First(&current, "id = ?", in.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if current.Email == in.Email {
		return false, nil
	}

	var taken int64
	if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return false, nil
	}
	err = tx.Model(&models.User{}).Where("id = ?", in.ID).Updates(map[string]any{
		"email":   in.Email,
		"name":    in.Name,
		"picture": in.Picture,
	}).Error
	if err != nil {
		return false, fmt.Errorf("update user email: %w", err)
	}
	return true, nil
}

// DeleteUser removes the user with the provider id. Deleting an unknown id succeeds
// and reports false. A user that still owns stores is kept and ErrUserOwnsStores is returned.
func DeleteUser(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, invalid("id", "is required")
	}

	deleted := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stores int64
		if err := tx.Model(&models.Store{}).Where("user_id = ?", id).Count(&stores).Error; err != nil {
			return fmt.Errorf("count stores: %w", err)
		}
		if stores > 0 {
			return ErrUserOwnsStores
		}

		if err := tx.Where("user_id = ? AND delivered_at IS NULL", id).Delete(&models.RoleSync{}).Error; err != nil {
			return fmt.Errorf("drop pending role syncs: %w", err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// SetUserRole changes a user's role and queues the new role for the provider.
func SetUserRole(ctx context.Context, db *gorm.DB, caller *Caller, userID string, role models.Role) (*models.User, *models.RoleSync, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil, invalid("id", "is required")
	}
	if !role.Valid() {
		return nil, nil, invalid("role", "must be one of USER, SELLER, ADMIN")
	}

	var user models.User
	var sync *models.RoleSync
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		user.Role = role
		sync, err = outbox.Record(tx, user.ID, role)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, sync, nil
}

// GetUser returns one user by id.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var u models.User
	err := db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns every user, oldest first. ADMIN only.
func ListUsers(ctx context.Context, db *gorm.DB, caller *Caller) ([]models.User, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	var out []models.User
	if err := db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Summary is the admin dashboard overview.
type Summary struct {
	Users         int64 `json:"users"`
	Categories    int64 `json:"categories"`
	SubCategories int64 `json:"subCategories"`
	Stores        int64 `json:"stores"`
	PendingSyncs  int64 `json:"pendingRoleSyncs"`
}

// AdminSummary counts the main tables. ADMIN only.
func AdminSummary(ctx context.Context, db *gorm.DB, caller *Caller) (*Summary, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	var s Summary
	q := db.WithContext(ctx)
	counts := []struct {
		model any
		where string
		dst   *int64
	}{
		{&models.User{}, "", &s.Users},
		{&models.Category{}, "", &s.Categories},
		{&models.SubCategory{}, "", &s.SubCategories},
		{&models.Store{}, "", &s.Stores},
		{&models.RoleSync{}, "delivered_at IS NULL", &s.PendingSyncs},
	}
	for _, c := range counts {
		m := q.Model(c.model)
		if c.where != "" {
			m = m.Where(c.where)
		}
		if err := m.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("admin summary: %w", err)
		}
	}
	return &s, nil
}

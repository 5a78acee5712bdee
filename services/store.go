// store.go - Seller store queries and mutations

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-marketplace-backend/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UpsertStore creates or updates a store owned by the calling SELLER.
// A store belonging to another user cannot be updated.
func UpsertStore(ctx context.Context, db *gorm.DB, caller *Caller, store *models.Store) (*UpsertResult[models.Store], error) {
	if err := RequireSeller(caller); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, invalid("", "Please provide store data.")
	}
	if store.ID == "" {
		store.ID = uuid.NewString()
	}

	var existing struct {
		UserID string
		URL    string
	}
	err := db.WithContext(ctx).Model(&models.Store{}).Select("user_id", "url").Where("id = ?", store.ID).Scan(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("load store owner: %w", err)
	}
	if existing.UserID != "" && existing.UserID != caller.UserID {
		return nil, ErrUnauthorized
	}

	// an omitted URL keeps the current one; only a new store derives it from the name
	if strings.TrimSpace(store.URL) == "" {
		if existing.URL != "" {
			store.URL = existing.URL
		} else {
			store.URL = slug.Make(store.Name)
		}
	}
	switch {
	case strings.TrimSpace(store.Name) == "":
		return nil, invalid("name", "is required")
	case strings.TrimSpace(store.URL) == "":
		return nil, invalid("url", "is required")
	case strings.TrimSpace(store.Email) == "":
		return nil, invalid("email", "is required")
	case store.URL == "new":
		return nil, invalid("url", "is reserved") // dashboard creation form path
	}

	fields := []uniqueField{
		{Column: "name", Label: "name", Value: store.Name},
		{Column: "url", Label: "URL", Value: store.URL},
		{Column: "email", Label: "email", Value: store.Email},
	}
	recheck := func() error {
		return checkUnique(ctx, db, &models.Store{}, "store", store.ID, fields...)
	}
	if err := recheck(); err != nil {
		return nil, err
	}

	row := models.Store{
		ID:          store.ID,
		Name:        store.Name,
		Description: store.Description,
		Email:       store.Email,
		Phone:       store.Phone,
		URL:         store.URL,
		Logo:        store.Logo,
		Cover:       store.Cover,
		Status:      models.StoreStatusPending, // status is only ever changed by moderation
		Featured:    store.Featured,
		UserID:      caller.UserID,
	}
	err = upsertByID(ctx, db, &row,
		[]string{"name", "description", "email", "phone", "url", "logo", "cover", "featured"})
	if err := translateWriteError(err, "store", recheck, nil); err != nil {
		return nil, err
	}

	saved, err := GetStoreByURL(ctx, db, row.URL)
	if err != nil {
		return nil, err
	}
	return &UpsertResult[models.Store]{Entity: saved, Created: freshlyCreated(saved.CreatedAt, saved.UpdatedAt)}, nil
}

// GetSellerStores lists the caller's stores, oldest first.
func GetSellerStores(ctx context.Context, db *gorm.DB, caller *Caller) ([]models.Store, error) {
	if caller == nil || caller.UserID == "" {
		return nil, ErrUnauthenticated
	}
	var out []models.Store
	err := db.WithContext(ctx).Where("user_id = ?", caller.UserID).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return out, nil
}

// GetStoreByURL returns the store with the given slug.
func GetStoreByURL(ctx context.Context, db *gorm.DB, url string) (*models.Store, error) {
	var s models.Store
	err := db.WithContext(ctx).First(&s, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

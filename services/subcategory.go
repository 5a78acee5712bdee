// subcategory.go - SubCategory queries and admin-only mutations

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-marketplace-backend/models"

	"gorm.io/gorm"
)

// DefaultRandomLimit caps random subcategory samples when no limit is given.
const DefaultRandomLimit = 10

// UpsertSubCategory creates or updates a subcategory. The parent id is not pre-checked;
// a missing parent surfaces as the store's foreign key failure.
func UpsertSubCategory(ctx context.Context, db *gorm.DB, caller *Caller, sub *models.SubCategory) (*UpsertResult[models.SubCategory], error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, invalid("", "Please provide subCategory data.")
	}
	if err := validateCatalogFields(sub.ID, sub.Name, sub.URL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.CategoryID) == "" {
		return nil, invalid("categoryId", "is required")
	}

	fields := categoryUniqueFields(sub.Name, sub.URL)
	recheck := func() error {
		return checkUnique(ctx, db, &models.SubCategory{}, "SubCategory", sub.ID, fields...)
	}
	if err := recheck(); err != nil {
		return nil, err
	}

	row := models.SubCategory{
		ID:         sub.ID,
		Name:       sub.Name,
		Image:      sub.Image,
		URL:        sub.URL,
		Featured:   sub.Featured,
		CategoryID: sub.CategoryID,
	}
	err := upsertByID(ctx, db, &row, []string{"name", "image", "url", "featured", "category_id"})
	fk := &ValidationError{Field: "categoryId", Message: "parent category does not exist"}
	if err := translateWriteError(err, "SubCategory", recheck, fk); err != nil {
		return nil, err
	}

	saved, err := GetSubCategory(ctx, db, row.ID)
	if err != nil {
		return nil, err
	}
	return &UpsertResult[models.SubCategory]{Entity: saved, Created: freshlyCreated(saved.CreatedAt, saved.UpdatedAt)}, nil
}

// GetSubCategory returns one subcategory by id with its parent category.
func GetSubCategory(ctx context.Context, db *gorm.DB, id string) (*models.SubCategory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "Please provide subCategory ID.")
	}
	var s models.SubCategory
	err := db.WithContext(ctx).Preload("Category").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subcategory: %w", err)
	}
	return &s, nil
}

// GetAllSubCategories returns every subcategory with its parent, most recently updated first.
func GetAllSubCategories(ctx context.Context, db *gorm.DB) ([]models.SubCategory, error) {
	var out []models.SubCategory
	if err := db.WithContext(ctx).Preload("Category").Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return out, nil
}

// GetSubcategories returns up to limit subcategories. With random set the sample is drawn
// in store-level random order and capped at DefaultRandomLimit when limit <= 0.
// Without random, limit <= 0 means no limit.
func GetSubcategories(ctx context.Context, db *gorm.DB, limit int, random bool) ([]models.SubCategory, error) {
	q := db.WithContext(ctx).Model(&models.SubCategory{})
	if random {
		if limit <= 0 {
			limit = DefaultRandomLimit
		}
		q = q.Order("RANDOM()").Limit(limit)
	} else {
		q = q.Order("created_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
	}

	var out []models.SubCategory
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sample subcategories: %w", err)
	}
	return out, nil
}

// DeleteSubCategory removes one subcategory.
func DeleteSubCategory(ctx context.Context, db *gorm.DB, caller *Caller, id string) (*models.SubCategory, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	existing, err := GetSubCategory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).Delete(&models.SubCategory{}, "id = ?", id)
	if res.Error != nil {
		return nil, fmt.Errorf("delete subcategory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return existing, nil
}

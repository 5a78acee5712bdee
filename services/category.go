// category.go - Category queries and admin-only mutations

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-marketplace-backend/models"

	"gorm.io/gorm"
)

// UpsertResult carries the persisted entity and whether it was newly created.
type UpsertResult[T any] struct {
	Entity  *T
	Created bool
}

func categoryUniqueFields(name, url string) []uniqueField {
	return []uniqueField{
		{Column: "name", Label: "name", Value: name},
		{Column: "url", Label: "URL", Value: url},
	}
}

// UpsertCategory creates or updates a category. Only ADMIN callers may mutate the catalog.
func UpsertCategory(ctx context.Context, db *gorm.DB, caller *Caller, category *models.Category) (*UpsertResult[models.Category], error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, invalid("", "Please provide category data.")
	}
	if err := validateCatalogFields(category.ID, category.Name, category.URL); err != nil {
		return nil, err
	}

	fields := categoryUniqueFields(category.Name, category.URL)
	recheck := func() error {
		return checkUnique(ctx, db, &models.Category{}, "category", category.ID, fields...)
	}
	if err := recheck(); err != nil {
		return nil, err
	}

	row := models.Category{
		ID:       category.ID,
		Name:     category.Name,
		Image:    category.Image,
		URL:      category.URL,
		Featured: category.Featured,
	}
	err := upsertByID(ctx, db, &row, []string{"name", "image", "url", "featured"})
	if err := translateWriteError(err, "category", recheck, nil); err != nil {
		return nil, err
	}

	saved, err := GetCategory(ctx, db, row.ID)
	if err != nil {
		return nil, err
	}
	return &UpsertResult[models.Category]{Entity: saved, Created: freshlyCreated(saved.CreatedAt, saved.UpdatedAt)}, nil
}

// GetCategory returns one category by id.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*models.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "Please provide category ID.")
	}
	var c models.Category
	err := db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// GetAllCategories returns every category, most recently updated first.
func GetAllCategories(ctx context.Context, db *gorm.DB) ([]models.Category, error) {
	var out []models.Category
	if err := db.WithContext(ctx).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// DeleteCategory removes a category and, through the foreign key, its subcategories.
func DeleteCategory(ctx context.Context, db *gorm.DB, caller *Caller, id string) (*models.Category, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	existing, err := GetCategory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return nil, fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return existing, nil
}

func validateCatalogFields(id, name, url string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return invalid("id", "is required")
	case strings.TrimSpace(name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(url) == "":
		return invalid("url", "is required")
	}
	return nil
}

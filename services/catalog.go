// catalog.go - Uniqueness-checked upsert shared by the catalog entities

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-marketplace-backend/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// uniqueField is one human-facing column that must be unique per table.
type uniqueField struct {
	Column string // database column
	Label  string // word used in the conflict message
	Value  string
}

// checkUnique looks for another row (id <> id) that already uses one of fields.
// Fields are reported in the order given, so the first listed field wins when several collide.
// This is advisory: the unique indexes are what make the write race-safe.
func checkUnique(ctx context.Context, db *gorm.DB, model any, entity, id string, fields ...uniqueField) error {
	cols := make([]string, 0, len(fields))
	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		cols = append(cols, f.Column)
		conds = append(conds, f.Column+" = ?")
		args = append(args, f.Value)
	}
	args = append(args, id)

	var rows []map[string]any
	err := db.WithContext(ctx).Model(model).
		Select(cols).
		Where("("+strings.Join(conds, " OR ")+") AND id <> ?", args...).
		Limit(len(fields)).
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("check %s uniqueness: %w", entity, err)
	}

	for _, f := range fields {
		for _, row := range rows {
			if fmt.Sprint(row[f.Column]) == f.Value {
				return &ConflictError{
					Field:   f.Column,
					Message: fmt.Sprintf("A %s with the same %s already exists", entity, f.Label),
				}
			}
		}
	}
	return nil
}

// upsertByID inserts value or, when a row with id already exists, overwrites updateColumns.
// Whether a row was created is read back from the stored timestamps with freshlyCreated.
func upsertByID(ctx context.Context, db *gorm.DB, value any, updateColumns []string) error {
	cols := append([]string{}, updateColumns...)
	cols = append(cols, "updated_at")
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(value).Error
}

// freshlyCreated reports whether a row read back after upsertByID came from the insert branch.
// An insert stamps both columns with the same instant; the update branch only moves updated_at.
func freshlyCreated(createdAt, updatedAt time.Time) bool {
	return createdAt.Equal(updatedAt)
}

// translateWriteError maps store constraint failures onto the service error taxonomy.
// recheck re-runs the advisory uniqueness query to recover a field-specific message.
func translateWriteError(err error, entity string, recheck func() error, fk *ValidationError) error {
	switch {
	case err == nil:
		return nil
	case database.IsDuplicateKey(err):
		if cerr := recheck(); cerr != nil && IsConflict(cerr) {
			return cerr
		}
		return &ConflictError{Message: fmt.Sprintf("A %s with the same name or URL already exists", entity)}
	case database.IsForeignKeyViolation(err) && fk != nil:
		return fk
	default:
		return fmt.Errorf("upsert %s: %w", entity, err)
	}
}

// database.go - Handles database connection and setup

package database // Declares the package name

import ( // Import required packages
	"errors"  // Sentinel checks on lookup results
	"fmt"     // Error wrapping
	"log"     // Backing writer for the GORM logger
	"os"      // Stdout for the GORM logger
	"strings" // DSN inspection
	"time"    // Slow query threshold

	"go-marketplace-backend/config" // Project config
	"go-marketplace-backend/models" // Persisted models

	"gorm.io/driver/postgres" // Postgres driver for GORM (pgx)
	"gorm.io/driver/sqlite"   // SQLite driver for GORM
	"gorm.io/gorm"            // GORM ORM
	"gorm.io/gorm/logger"     // GORM query logger
)

var DB *gorm.DB // Global variable to hold the database connection (pointer to gorm.DB)

// Connect opens the configured database, runs migrations and seeds the bootstrap admin.
func Connect(cfg *config.Config) error {
	dsn := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	db, err := Open(cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	if err := createDefaultAdmin(db, cfg.AdminUserID, cfg.AdminEmail); err != nil {
		return err
	}
	DB = db
	return nil
}

// Open returns a GORM handle for driver ("sqlite" or "postgres").
// Duplicate-key and foreign-key failures are translated into gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(withForeignKeys(dsn))
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("open database: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// withForeignKeys turns on SQLite foreign key enforcement for every pooled connection.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Migrate creates or updates every table, index and foreign key.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Category{},
		&models.SubCategory{},
		&models.RoleSync{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// createDefaultAdmin - Ensures the configured bootstrap user exists with role ADMIN.
// Nothing happens unless both ADMIN_USER_ID and ADMIN_EMAIL are set.
func createDefaultAdmin(db *gorm.DB, userID, email string) error {
	if userID == "" || email == "" {
		return nil
	}

	var user models.User
	err := db.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{ID: userID, Name: "Admin", Email: email, Role: models.RoleAdmin}
		return db.Create(&user).Error
	}
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	return db.Model(&user).Update("role", models.RoleAdmin).Error
}

// IsDuplicateKey reports whether err is a unique/primary key violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "SQLSTATE 23503")
}

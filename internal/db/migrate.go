package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-users/internal/models"
)

// Migrate applies the GORM schema migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Permission{},
		&models.Profile{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

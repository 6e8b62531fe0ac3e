package db

import (
	"fmt" // Error wrapping

	"eventflow/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Migrate performs automatic migration for the database schema.
// AutoMigrate creates tables, missing columns and indexes, including the
// unique (event_id, user_id) index that keeps one budget per event.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.UserAccount{},
		&domain.UserProfile{},
		&domain.Event{},
		&domain.Budget{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

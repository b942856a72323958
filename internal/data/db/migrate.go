package db

import (
	"fmt"

	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.User{},
		&types.SavedConfiguration{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureIndexes adds indexes AutoMigrate cannot express.
func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_saved_configuration_user_created
		ON saved_configuration(user_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_saved_configuration_user_created: %w", err)
	}
	return nil
}

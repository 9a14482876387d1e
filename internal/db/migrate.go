package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"taskhub/internal/model"
)

// models lists tables in dependency order.
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Task{},
		&model.Upload{},
		&model.Supplier{},
		&model.Invoice{},
	}
}

// Migrate runs auto-migrations for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, dependents first.
func Reset(db *gorm.DB) {
	tables := models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			slog.Warn("failed to drop table (may not exist)", "error", err)
		}
	}
}

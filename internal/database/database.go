package database

import (
	"fmt"
	"log"

	"github.com/flipbook-labs/flipbook-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres connection for generation history. A missing
// URL disables history entirely and returns a nil handle.
func Connect(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		log.Println("⚠️  Generation history DISABLED (DATABASE_URL not set)")
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("✅ Database connected")
	return db, nil
}

// Migrate runs schema migrations
func Migrate(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(&models.GenerationLog{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Println("✅ Migrations complete")
	return nil
}

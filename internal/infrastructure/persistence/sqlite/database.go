// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/alchemorsel/mealcart/internal/infrastructure/persistence/gorm"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	inMemory := dbPath == "" || dbPath == ":memory:"
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if inMemory {
		// every connection to :memory: opens a fresh database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(gormModels.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates an empty catalog with the demo dishes
func SeedDatabase(db *gorm.DB) error {
	repo := gormModels.NewDishRepository(db)

	count, err := repo.Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count dishes: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	if err := repo.Replace(context.Background(), DemoDishes()); err != nil {
		return fmt.Errorf("failed to seed dishes: %w", err)
	}
	return nil
}

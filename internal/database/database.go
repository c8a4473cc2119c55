package database

import (
	"fmt"
	"log"
	"time"

	"hunter-market/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	dsn := databaseURL
	if dsn == "" {
		dsn = "root:hunter@tcp(127.0.0.1:3306)/hunter_market?charset=utf8mb4&parseTime=True&loc=Local"
	}

	// TranslateError so duplicate-key failures surface as gorm.ErrDuplicatedKey
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool parameters
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.EverytimePost{},
		&models.Hunt{},
	); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	if err := ensureHuntEverytimeURLIndex(db); err != nil {
		log.Printf("Migration warning: %v", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// ensureHuntEverytimeURLIndex guarantees the sparse unique index on
// hunts.everytime_url exists on databases created before the column was
// added. MySQL unique indexes admit multiple NULLs, which gives the
// at-most-one-listing-per-source-URL rule while leaving manual listings
// unconstrained.
func ensureHuntEverytimeURLIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&models.Hunt{}, "EverytimeURL") {
		return nil
	}
	if err := db.Migrator().CreateIndex(&models.Hunt{}, "EverytimeURL"); err != nil {
		return fmt.Errorf("failed creating everytime_url index: %w", err)
	}
	log.Println("Added unique index on hunts.everytime_url")
	return nil
}

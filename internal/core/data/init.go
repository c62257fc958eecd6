package data

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize connects to the configured Postgres instance and migrates the
// schema, returning the shared database handle.
func Initialize(dataSource string, debug bool) (*gorm.DB, error) {
	// By default only log errors but enable full SQL query prints-to-console with debug mode
	log := logger.Default.LogMode(logger.Error)
	if debug {
		log = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(postgres.Open(dataSource), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %s", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate brings the schema up to date on any supported engine.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&Account{}, &PlayerRecord{}, &PlayerItem{}, &DenyEntry{})
	if err != nil {
		return fmt.Errorf("error auto migrating db: %s", err)
	}
	return nil
}

// Shutdown closes the underlying connection pool.
func Shutdown(db *gorm.DB) error {
	database, err := db.DB()
	if err != nil {
		return fmt.Errorf("error while getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("error while closing database connection: %w", err)
	}
	return nil
}

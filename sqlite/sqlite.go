package sqlite

import (
	"fmt"

	"moviecatalog/postgres"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewConnection opens (creating if needed) the SQLite database at path and
// migrates the movies table. It serves local runs and tests that cannot
// start a Postgres container.
func NewConnection(path string) (*gorm.DB, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent requests.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: get db instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&postgres.MovieModel{}); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return db, nil
}

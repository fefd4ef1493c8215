package database

import (
	"fmt"
	"log"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a pure-Go SQLite database for local development.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	log.Println("[Database] using SQLite for local development:", path)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        path,
		}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Warn)},
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return prepare(db, SQLitePool)
}

package database

import (
	"github.com/windbnb/booking-service/config"
	"gorm.io/gorm"
)

// Open connects to the database selected by DB_DRIVER and migrates it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return NewSQLiteDB(cfg.SQLitePath)
	}
	return NewPostgresDB(cfg.DSN())
}

package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig bounds the connection pool behind a gorm handle.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// PostgresPool sizes the pool for a service replica sharing the database with others.
var PostgresPool = PoolConfig{MaxOpen: 25, MaxIdle: 10, MaxLifetime: 5 * time.Minute, MaxIdleTime: time.Minute}

// SQLitePool keeps a single connection; SQLite allows one writer at a time.
var SQLitePool = PoolConfig{MaxOpen: 1, MaxIdle: 1}

// NewPostgresDB connects to Postgres and installs the schema, including the
// bookings_no_overlap exclusion constraint.
func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return prepare(db, PostgresPool)
}

func prepare(db *gorm.DB, pool PoolConfig) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

//go:build integration

package integration

import (
	"log"
	"os"
	"testing"

	"github.com/windbnb/booking-service/config"
	"github.com/windbnb/booking-service/pkg/database"
	"gorm.io/gorm"
)

var testDB *gorm.DB

// TestMain runs against the Postgres named by the usual DB_* variables, defaulting
// to the docker test instance on port 5434.
func TestMain(m *testing.M) {
	cfg := config.Load()
	cfg.DBDriver = config.DriverPostgres
	if os.Getenv("DB_PORT") == "" {
		cfg.DBPort = "5434"
	}
	if os.Getenv("DB_NAME") == "" {
		cfg.DBName = "booking_test_db"
	}

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open test database: %v", err)
	}
	testDB = db

	// Start from an empty schema so the exclusion constraint is installed fresh.
	resetSchema()

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS bookings, listings CASCADE")
	os.Exit(code)
}

func resetSchema() {
	if err := testDB.Exec("DROP TABLE IF EXISTS bookings, listings CASCADE").Error; err != nil {
		log.Fatalf("failed to drop tables: %v", err)
	}
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}
}

func cleanTables() {
	testDB.Exec("TRUNCATE bookings, listings RESTART IDENTITY")
}

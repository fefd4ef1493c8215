package database

import (
	"fmt"

	"github.com/windbnb/booking-service/internal/models"
	"gorm.io/gorm"
)

// Exclusion constraint: no two bookings of one listing may share a night.
// Requires btree_gist for the equality part on listing_id.
const noOverlapConstraintSQL = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (listing_id WITH =, daterange(start_date, end_date, '[)') WITH &&);
	END IF;
END
$$;`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Listing{}, &models.Booking{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}
	if err := db.Exec(noOverlapConstraintSQL).Error; err != nil {
		return fmt.Errorf("add bookings_no_overlap: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/windbnb/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListingRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Listing, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Listing, error)
	Upsert(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) FindByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindByIDForUpdate acquires a row-level lock on the listing within the given transaction.
// Every booking write for a listing goes through this lock.
func (r *listingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Upsert inserts or refreshes the listing keyed by its upstream id.
func (r *listingRepository) Upsert(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"owner_id", "name", "address", "city", "state", "country", "lat", "lng", "price", "updated_at",
		}),
	}).Create(listing).Error
}

func (r *listingRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Delete(&models.Listing{}, id).Error
}

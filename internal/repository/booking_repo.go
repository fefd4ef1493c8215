package repository

import (
	"context"

	"github.com/windbnb/booking-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRepository persists bookings. Methods that take a tx run inside the caller's
// transaction; a nil tx falls back to the repository's own handle.
type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByListingID(ctx context.Context, tx *gorm.DB, listingID uint) ([]models.Booking, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Booking, error)
	UpdateDates(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteByListingID(ctx context.Context, tx *gorm.DB, listingID uint) (int64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.conn(tx).WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row for the rest of the transaction.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByListingID(ctx context.Context, tx *gorm.DB, listingID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.conn(tx).WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("start_date ASC, id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("user_id = ?", userID).
		Order("start_date ASC, id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateDates writes the booking's date range and UpdatedAt; nothing else is mutable.
func (r *bookingRepository) UpdateDates(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"start_date": datatypes.Date(booking.Start()),
			"end_date":   datatypes.Date(booking.End()),
			"updated_at": booking.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.conn(tx).WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepository) DeleteByListingID(ctx context.Context, tx *gorm.DB, listingID uint) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("listing_id = ?", listingID).
		Delete(&models.Booking{})
	return res.RowsAffected, res.Error
}

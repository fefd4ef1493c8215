package models

import (
	"time"

	"gorm.io/datatypes"
)

// Booking reserves one listing for one user over the half-open range [StartDate, EndDate).
type Booking struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ListingID uint           `gorm:"not null;index" json:"listing_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	StartDate datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"not null" json:"end_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

func (b *Booking) Start() time.Time { return DateOf(time.Time(b.StartDate)) }

func (b *Booking) End() time.Time { return DateOf(time.Time(b.EndDate)) }

// OverlapsRange reports whether the booking shares at least one night with [start, end).
func (b *Booking) OverlapsRange(start, end time.Time) bool {
	return Overlaps(b.Start(), b.End(), start, end)
}

// BookingView is what a listing's booking calendar exposes. Renter identity and
// record metadata are only filled in for the listing owner.
type BookingView struct {
	ID        uint       `json:"id,omitempty"`
	ListingID uint       `json:"listing_id"`
	UserID    uint       `json:"user_id,omitempty"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (b *Booking) OwnerView() BookingView {
	created, updated := b.CreatedAt, b.UpdatedAt
	return BookingView{
		ID:        b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		StartDate: FormatDate(b.Start()),
		EndDate:   FormatDate(b.End()),
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}

func (b *Booking) PublicView() BookingView {
	return BookingView{
		ListingID: b.ListingID,
		StartDate: FormatDate(b.Start()),
		EndDate:   FormatDate(b.End()),
	}
}

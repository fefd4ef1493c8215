package models

import "time"

// Listing is the booking-service copy of a rentable spot. Rows are written by the
// listing consumer; ID is the upstream listing id.
type Listing struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Name      string    `gorm:"not null" json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

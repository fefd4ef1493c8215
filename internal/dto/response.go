package dto

import (
	"time"

	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/service"
)

type BookingResponse struct {
	ID        uint      `json:"id"`
	ListingID uint      `json:"listing_id"`
	UserID    uint      `json:"user_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListingSummary struct {
	ID      uint    `json:"id"`
	OwnerID uint    `json:"owner_id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Price   float64 `json:"price"`
}

type CurrentBookingResponse struct {
	BookingResponse
	Listing *ListingSummary `json:"listing"`
}

type BookingsResponse[T any] struct {
	Bookings []T `json:"bookings"`
}

type AvailabilityResponse struct {
	ListingID uint                 `json:"listing_id"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Available bool                 `json:"available"`
	Conflicts []models.BookingView `json:"conflicts"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		StartDate: models.FormatDate(b.Start()),
		EndDate:   models.FormatDate(b.End()),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func ToCurrentBookingResponse(b *models.Booking) CurrentBookingResponse {
	resp := CurrentBookingResponse{BookingResponse: ToBookingResponse(b)}
	if l := b.Listing; l != nil {
		resp.Listing = &ListingSummary{
			ID:      l.ID,
			OwnerID: l.OwnerID,
			Name:    l.Name,
			Address: l.Address,
			City:    l.City,
			State:   l.State,
			Country: l.Country,
			Lat:     l.Lat,
			Lng:     l.Lng,
			Price:   l.Price,
		}
	}
	return resp
}

// ToAvailabilityResponse exposes conflicting ranges through the public projection only.
func ToAvailabilityResponse(listingID uint, start, end time.Time, a *service.Availability) AvailabilityResponse {
	conflicts := make([]models.BookingView, len(a.Conflicts))
	for i := range a.Conflicts {
		conflicts[i] = a.Conflicts[i].PublicView()
	}
	return AvailabilityResponse{
		ListingID: listingID,
		StartDate: models.FormatDate(start),
		EndDate:   models.FormatDate(end),
		Available: a.Available,
		Conflicts: conflicts,
	}
}

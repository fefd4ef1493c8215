package service

import (
	"time"

	"github.com/windbnb/booking-service/internal/models"
)

// Routing keys published on the bookings exchange.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
)

// EventPublisher is satisfied by *rabbitmq.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  uint      `json:"booking_id"`
	ListingID  uint      `json:"listing_id"`
	UserID     uint      `json:"user_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newBookingEvent(eventType string, b *models.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		UserID:     b.UserID,
		StartDate:  models.FormatDate(b.Start()),
		EndDate:    models.FormatDate(b.End()),
		OccurredAt: at.UTC(),
	}
}

// Command seed loads the demo listings and bookings into the configured database
// and prints bearer tokens for the demo users.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/windbnb/booking-service/config"
	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/repository"
	"github.com/windbnb/booking-service/internal/service"
	"github.com/windbnb/booking-service/pkg/database"
	"github.com/windbnb/booking-service/pkg/token"
)

var listings = []models.Listing{
	{ID: 1, OwnerID: 1, Name: "App Academy", Address: "123 Disney Lane", City: "San Francisco",
		State: "California", Country: "United States of America", Lat: 37.7645358, Lng: -122.4730327, Price: 123},
	{ID: 2, OwnerID: 2, Name: "Beachside Bungalow", Address: "456 Ocean Drive", City: "Miami",
		State: "Florida", Country: "United States of America", Lat: 25.7617, Lng: -80.1918, Price: 200},
	{ID: 3, OwnerID: 3, Name: "Mountain Cabin", Address: "789 Mountain Road", City: "Denver",
		State: "Colorado", Country: "United States of America", Lat: 39.7392, Lng: -104.9903, Price: 150},
}

// Offsets are days from today so the demo bookings are always in the future.
var bookings = []struct {
	listingID, userID uint
	offset, nights    int
}{
	{listingID: 1, userID: 2, offset: 14, nights: 6},
	{listingID: 2, userID: 3, offset: 54, nights: 5},
	{listingID: 3, userID: 1, offset: 94, nights: 5},
}

var userIDs = []uint{1, 2, 3}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	loc, _ := cfg.Location()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	ctx := context.Background()

	listingRepo := repository.NewListingRepository(db)
	svc := service.NewBookingService(repository.NewBookingRepository(db), listingRepo, service.WithLocation(loc))

	for i := range listings {
		if err := listingRepo.Upsert(ctx, &listings[i]); err != nil {
			log.Fatalf("failed to seed listing %d: %v", listings[i].ID, err)
		}
	}
	log.Printf("[Seed] %d listings", len(listings))

	today := time.Now().In(loc)
	for _, b := range bookings {
		start := today.AddDate(0, 0, b.offset)
		end := start.AddDate(0, 0, b.nights)
		owner := listings[b.listingID-1].OwnerID

		booking, err := svc.CreateBooking(ctx, service.CreateBookingInput{
			ListingID: b.listingID,
			UserID:    b.userID,
			OwnerID:   owner,
			StartDate: start.Format(models.DateLayout),
			EndDate:   end.Format(models.DateLayout),
		})
		switch {
		case errors.Is(err, service.ErrConflict):
			log.Printf("[Seed] listing %d already booked for %s, skipping", b.listingID, start.Format(models.DateLayout))
		case err != nil:
			log.Fatalf("failed to seed booking on listing %d: %v", b.listingID, err)
		default:
			log.Printf("[Seed] booking %d on listing %d for user %d", booking.ID, booking.ListingID, booking.UserID)
		}
	}

	tokens := token.New(cfg.JWTSecret, 30*24*time.Hour)
	for _, id := range userIDs {
		tok, err := tokens.GenerateToken(id)
		if err != nil {
			log.Fatalf("failed to issue token for user %d: %v", id, err)
		}
		log.Printf("[Seed] user %d: Bearer %s", id, tok)
	}
}

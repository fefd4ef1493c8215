package consumer

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/repository"
)

// Routing keys published by the listing service.
const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"
)

// ListingPurger removes a listing together with its bookings.
type ListingPurger interface {
	PurgeListing(ctx context.Context, listingID uint) error
}

type ListingConsumer struct {
	listings repository.ListingRepository
	purger   ListingPurger
}

func NewListingConsumer(listings repository.ListingRepository, purger ListingPurger) *ListingConsumer {
	return &ListingConsumer{listings: listings, purger: purger}
}

// Start keeps the local listing table in step with the listing service.
func (lc *ListingConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			lc.handleMessage(context.Background(), msg)
		}
		log.Println("[ListingConsumer] channel closed, stopping consumer")
	}()
}

func (lc *ListingConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var listing models.Listing
	if err := json.Unmarshal(msg.Body, &listing); err != nil || listing.ID == 0 {
		log.Printf("[ListingConsumer] dropping malformed %s message: %v", msg.RoutingKey, err)
		_ = msg.Nack(false, false)
		return
	}

	switch msg.RoutingKey {
	case ListingCreated, ListingUpdated:
		if err := lc.listings.Upsert(ctx, &listing); err != nil {
			log.Printf("[ListingConsumer] failed to upsert listing %d: %v", listing.ID, err)
			_ = msg.Nack(false, true)
			return
		}
		log.Printf("[ListingConsumer] synced listing %d: %s", listing.ID, listing.Name)

	case ListingDeleted:
		if err := lc.purger.PurgeListing(ctx, listing.ID); err != nil {
			log.Printf("[ListingConsumer] failed to purge listing %d: %v", listing.ID, err)
			_ = msg.Nack(false, true)
			return
		}

	default:
		log.Printf("[ListingConsumer] ignoring routing key %q", msg.RoutingKey)
	}

	_ = msg.Ack(false)
}

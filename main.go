package main

import (
	"log"
	"time"

	"github.com/windbnb/booking-service/config"
	"github.com/windbnb/booking-service/internal/consumer"
	"github.com/windbnb/booking-service/internal/service"
	"github.com/windbnb/booking-service/pkg/database"
	"github.com/windbnb/booking-service/pkg/rabbitmq"
	"github.com/windbnb/booking-service/pkg/token"
)

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

	opts := []service.Option{service.WithLocation(loc)}

	// RabbitMQ publisher: booking events for other services
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect RabbitMQ publisher: %v", err)
		}
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
	}

	srv := newServer(db, token.New(cfg.JWTSecret, 24*time.Hour), opts...)

	// RabbitMQ consumer: sync listings from the listing service
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewListingConsumer(srv.listings, srv.bookings).Start(msgs)
	} else {
		log.Println("RABBITMQ_URL not set: listing sync and booking events disabled")
	}

	log.Printf("Booking Service starting on :%s (ledger timezone %s)", cfg.ServerPort, loc)
	srv.echo.Logger.Fatal(srv.echo.Start(":" + cfg.ServerPort))
}

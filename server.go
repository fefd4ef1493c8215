package main

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/windbnb/booking-service/internal/handler"
	"github.com/windbnb/booking-service/internal/middleware"
	"github.com/windbnb/booking-service/internal/repository"
	"github.com/windbnb/booking-service/internal/service"
	"github.com/windbnb/booking-service/pkg/token"
	"github.com/windbnb/booking-service/pkg/validator"
	"gorm.io/gorm"
)

type server struct {
	echo     *echo.Echo
	bookings service.BookingService
	listings repository.ListingRepository
}

func newServer(db *gorm.DB, tokens *token.Service, opts ...service.Option) *server {
	// Repositories
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Service
	bookingSvc := service.NewBookingService(bookingRepo, listingRepo, opts...)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = validator.New()
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.RequestID)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewBookingHandler(bookingSvc, listingRepo).RegisterRoutes(e, middleware.Auth(tokens))

	return &server{echo: e, bookings: bookingSvc, listings: listingRepo}
}

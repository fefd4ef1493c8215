package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/windbnb/booking-service/internal/dto"
	"github.com/windbnb/booking-service/internal/middleware"
	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/repository"
	"github.com/windbnb/booking-service/internal/service"
	"github.com/windbnb/booking-service/pkg/validator"
	"gorm.io/gorm"
)

type BookingHandler struct {
	svc         service.BookingService
	listingRepo repository.ListingRepository
}

func NewBookingHandler(svc service.BookingService, listingRepo repository.ListingRepository) *BookingHandler {
	return &BookingHandler{svc: svc, listingRepo: listingRepo}
}

// RegisterRoutes mounts the public availability query and the authenticated booking routes.
func (h *BookingHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	api := e.Group("/api/v1")

	api.GET("/listings/:id/availability", h.CheckAvailability)
	api.GET("/listings/:id/bookings", h.ListListingBookings, auth)
	api.POST("/listings/:id/bookings", h.CreateBooking, auth)

	api.GET("/bookings/current", h.ListCurrentBookings, auth)
	api.GET("/bookings/:id", h.GetBooking, auth)
	api.PUT("/bookings/:id", h.UpdateBooking, auth)
	api.DELETE("/bookings/:id", h.CancelBooking, auth)
}

func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	listingID, err := parseID(c, "invalid listing id")
	if err != nil {
		return err
	}

	start, err := models.ParseDate(c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, service.ErrDatesRequired.Error())
	}
	end, err := models.ParseDate(c.QueryParam("end_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, service.ErrDatesRequired.Error())
	}

	var exclude *uint
	if raw := c.QueryParam("exclude_booking_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude_booking_id")
		}
		v := uint(id)
		exclude = &v
	}

	if _, err := h.findListing(c, listingID); err != nil {
		return err
	}

	availability, err := h.svc.CheckAvailability(c.Request().Context(), listingID, start, end, exclude)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToAvailabilityResponse(listingID, start, end, availability))
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	listingID, err := parseID(c, "invalid listing id")
	if err != nil {
		return err
	}

	listing, err := h.findListing(c, listingID)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		ListingID: listing.ID,
		UserID:    middleware.UserID(c),
		OwnerID:   listing.OwnerID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListListingBookings(c echo.Context) error {
	listingID, err := parseID(c, "invalid listing id")
	if err != nil {
		return err
	}

	listing, err := h.findListing(c, listingID)
	if err != nil {
		return err
	}

	views, err := h.svc.ListBookingsForListing(c.Request().Context(), listing.ID, middleware.UserID(c), listing.OwnerID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.BookingsResponse[models.BookingView]{Bookings: views})
}

func (h *BookingHandler) ListCurrentBookings(c echo.Context) error {
	bookings, err := h.svc.ListBookingsForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.CurrentBookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToCurrentBookingResponse(&bookings[i])
	}

	return c.JSON(http.StatusOK, dto.BookingsResponse[dto.CurrentBookingResponse]{Bookings: resp})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "invalid booking id")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := parseID(c, "invalid booking id")
	if err != nil {
		return err
	}

	var req dto.UpdateBookingRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.UpdateBooking(c.Request().Context(), service.UpdateBookingInput{
		BookingID: id,
		UserID:    middleware.UserID(c),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := parseID(c, "invalid booking id")
	if err != nil {
		return err
	}

	if err := h.svc.CancelBooking(c.Request().Context(), id, middleware.UserID(c)); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully deleted"})
}

func (h *BookingHandler) findListing(c echo.Context, id uint) (*models.Listing, error) {
	listing, err := h.listingRepo.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, service.ErrListingNotFound.Error())
		}
		log.Printf("[BookingHandler] failed to load listing %d: %v", id, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return listing, nil
}

func parseID(c echo.Context, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return uint(id), nil
}

// bindRequest decodes strictly and validates. Field failures are reported with the
// same message the ledger uses for missing or malformed dates.
func bindRequest(c echo.Context, req any) error {
	if err := dto.Decode(c, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{
			Message: service.ErrDatesRequired.Error(),
			Errors:  validator.Fields(err),
		})
	}
	return nil
}

func toHTTPError(err error) error {
	switch service.KindOf(err) {
	case service.ErrValidation:
		return echo.NewHTTPError(http.StatusBadRequest, message(err))
	case service.ErrForbidden, service.ErrConflict:
		return echo.NewHTTPError(http.StatusForbidden, message(err))
	case service.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, message(err))
	default:
		log.Printf("[BookingHandler] %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func message(err error) string {
	var le *service.Error
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}

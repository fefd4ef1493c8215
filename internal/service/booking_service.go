package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// pgExclusionViolation is raised by the bookings_no_overlap constraint.
const pgExclusionViolation = "23P01"

type CreateBookingInput struct {
	ListingID uint
	UserID    uint
	OwnerID   uint
	StartDate string
	EndDate   string
}

type UpdateBookingInput struct {
	BookingID uint
	UserID    uint
	StartDate string
	EndDate   string
}

type Availability struct {
	Available bool
	Conflicts []models.Booking
}

// BookingService is the booking ledger. It owns the no-overlap invariant for every listing:
// all writes for a listing run check-then-write under that listing's lock.
type BookingService interface {
	CheckAvailability(ctx context.Context, listingID uint, startDate, endDate time.Time, excludeBookingID *uint) (*Availability, error)
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	UpdateBooking(ctx context.Context, in UpdateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID uint) error
	GetBooking(ctx context.Context, bookingID, userID uint) (*models.Booking, error)
	ListBookingsForListing(ctx context.Context, listingID, requesterID, ownerID uint) ([]models.BookingView, error)
	ListBookingsForUser(ctx context.Context, userID uint) ([]models.Booking, error)
	PurgeListing(ctx context.Context, listingID uint) error
}

type Option func(*bookingService)

func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *bookingService) { s.loc = loc }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *bookingService) { s.publisher = p }
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	publisher   EventPublisher
	locks       *listingLocks
	now         func() time.Time
	loc         *time.Location
}

func NewBookingService(bookingRepo repository.BookingRepository, listingRepo repository.ListingRepository, opts ...Option) BookingService {
	s := &bookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		locks:       newListingLocks(),
		now:         time.Now,
		loc:         time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) CheckAvailability(ctx context.Context, listingID uint, startDate, endDate time.Time, excludeBookingID *uint) (*Availability, error) {
	start, end := models.DateOf(startDate), models.DateOf(endDate)
	if !end.After(start) {
		return nil, newError(ErrValidation, ErrInvalidRange)
	}

	conflicts, err := s.conflicts(ctx, nil, listingID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}

	return &Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	start, end, err := s.parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.UserID == in.OwnerID {
		return nil, newError(ErrForbidden, ErrOwnListing)
	}

	unlock := s.locks.Lock(in.ListingID)
	defer unlock()

	var result *models.Booking
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the listing row so other instances serialize on it too
		if err := s.lockListing(ctx, tx, in.ListingID); err != nil {
			return err
		}

		// 2. Reject any overlap with existing bookings
		conflicts, err := s.conflicts(ctx, tx, in.ListingID, start, end, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return newError(ErrConflict, ErrAlreadyBooked)
		}

		// 3. Persist
		ts := s.now()
		booking := &models.Booking{
			ListingID: in.ListingID,
			UserID:    in.UserID,
			StartDate: datatypes.Date(start),
			EndDate:   datatypes.Date(end),
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return writeError("create booking", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, asLedgerError("create booking", err)
	}

	log.Printf("[BookingService] booking %d created: listing %d, user %d, %s..%s",
		result.ID, result.ListingID, result.UserID, in.StartDate, in.EndDate)
	s.publish(EventBookingCreated, result)
	return result, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, in UpdateBookingInput) (*models.Booking, error) {
	existing, err := s.findBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != in.UserID {
		return nil, newError(ErrForbidden, ErrNotBookingOwner)
	}
	if !existing.End().After(s.today()) {
		return nil, newError(ErrForbidden, ErrBookingPast)
	}

	start, end, err := s.parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(existing.ListingID)
	defer unlock()

	var result *models.Booking
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockListing(ctx, tx, existing.ListingID); err != nil {
			return err
		}

		// Re-read under the lock: the booking may have been cancelled meanwhile.
		current, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, in.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, ErrBookingNotFound)
			}
			return storageError("load booking", err)
		}

		conflicts, err := s.conflicts(ctx, tx, current.ListingID, start, end, &current.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return newError(ErrConflict, ErrAlreadyBooked)
		}

		current.StartDate = datatypes.Date(start)
		current.EndDate = datatypes.Date(end)
		current.UpdatedAt = s.now()
		if err := s.bookingRepo.UpdateDates(ctx, tx, current); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, ErrBookingNotFound)
			}
			return writeError("update booking", err)
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, asLedgerError("update booking", err)
	}

	log.Printf("[BookingService] booking %d moved to %s..%s", result.ID, in.StartDate, in.EndDate)
	s.publish(EventBookingUpdated, result)
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID uint) error {
	existing, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !existing.Start().After(s.today()) {
		return newError(ErrForbidden, ErrBookingStarted)
	}
	if existing.UserID != userID {
		return newError(ErrForbidden, ErrNotBookingOwner)
	}

	unlock := s.locks.Lock(existing.ListingID)
	defer unlock()

	if err := s.bookingRepo.Delete(ctx, nil, bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, ErrBookingNotFound)
		}
		return storageError("delete booking", err)
	}

	log.Printf("[BookingService] booking %d cancelled by user %d", bookingID, userID)
	s.publish(EventBookingCancelled, existing)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, newError(ErrForbidden, ErrNotBookingOwner)
	}
	return booking, nil
}

func (s *bookingService) ListBookingsForListing(ctx context.Context, listingID, requesterID, ownerID uint) ([]models.BookingView, error) {
	bookings, err := s.bookingRepo.FindByListingID(ctx, nil, listingID)
	if err != nil {
		return nil, storageError("list bookings", err)
	}

	isOwner := requesterID == ownerID
	views := make([]models.BookingView, len(bookings))
	for i := range bookings {
		if isOwner {
			views[i] = bookings[i].OwnerView()
		} else {
			views[i] = bookings[i].PublicView()
		}
	}
	return views, nil
}

func (s *bookingService) ListBookingsForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("list user bookings", err)
	}
	return bookings, nil
}

// PurgeListing drops a listing and every booking made against it.
func (s *bookingService) PurgeListing(ctx context.Context, listingID uint) error {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	var removed int64
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.bookingRepo.DeleteByListingID(ctx, tx, listingID)
		if err != nil {
			return storageError("delete listing bookings", err)
		}
		removed = n
		if err := s.listingRepo.Delete(ctx, tx, listingID); err != nil {
			return storageError("delete listing", err)
		}
		return nil
	})
	if err != nil {
		return asLedgerError("purge listing", err)
	}

	log.Printf("[BookingService] listing %d purged with %d booking(s)", listingID, removed)
	return nil
}

func (s *bookingService) today() time.Time {
	return models.DateOf(s.now().In(s.loc))
}

// parseRange applies the date rules shared by create and update, in order.
func (s *bookingService) parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, newError(ErrValidation, ErrDatesRequired)
	}
	start, err := models.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, newError(ErrValidation, ErrDatesRequired)
	}
	end, err := models.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, newError(ErrValidation, ErrDatesRequired)
	}

	if start.Before(s.today()) {
		return time.Time{}, time.Time{}, newError(ErrValidation, ErrStartInPast)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, newError(ErrValidation, ErrInvalidRange)
	}
	return start, end, nil
}

func (s *bookingService) findBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, ErrBookingNotFound)
		}
		return nil, storageError("load booking", err)
	}
	return booking, nil
}

func (s *bookingService) lockListing(ctx context.Context, tx *gorm.DB, listingID uint) error {
	if _, err := s.listingRepo.FindByIDForUpdate(ctx, tx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, ErrListingNotFound)
		}
		return storageError("lock listing", err)
	}
	return nil
}

func (s *bookingService) conflicts(ctx context.Context, tx *gorm.DB, listingID uint, start, end time.Time, excludeID *uint) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByListingID(ctx, tx, listingID)
	if err != nil {
		return nil, storageError("load listing bookings", err)
	}

	var conflicts []models.Booking
	for _, b := range bookings {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.OverlapsRange(start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

func (s *bookingService) publish(routingKey string, b *models.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, newBookingEvent(routingKey, b, s.now())); err != nil {
		log.Printf("[BookingService] failed to publish %s for booking %d: %v", routingKey, b.ID, err)
	}
}

// writeError maps a failed insert/update. The Postgres exclusion constraint is the last
// line against overlapping rows and surfaces as a conflict like the in-process check.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return newError(ErrConflict, ErrAlreadyBooked)
	}
	return storageError(op, err)
}

func asLedgerError(op string, err error) error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return storageError(op, err)
}

//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windbnb/booking-service/internal/models"
	"github.com/windbnb/booking-service/internal/repository"
	"github.com/windbnb/booking-service/internal/service"
	"github.com/windbnb/booking-service/pkg/database"
	"gorm.io/datatypes"
)

const hostID uint = 1

var listingIDCounter uint = 0

func nextListingID() uint {
	listingIDCounter++
	return listingIDCounter
}

func createTestListing(t *testing.T, name string) *models.Listing {
	t.Helper()
	listing := &models.Listing{ID: nextListingID(), OwnerID: hostID, Name: name, City: "Denver", Price: 150}
	require.NoError(t, repository.NewListingRepository(testDB).Upsert(context.Background(), listing))
	return listing
}

// Each call returns an independent ledger, as a separate service replica would have.
func newBookingService() service.BookingService {
	return service.NewBookingService(repository.NewBookingRepository(testDB), repository.NewListingRepository(testDB))
}

func future(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(models.DateLayout)
}

// Test: 30 guests on 3 replicas race for the same nights → exactly one booking
func TestConcurrentOverlap_AcrossReplicas(t *testing.T) {
	cleanTables()
	listing := createTestListing(t, "Mountain Cabin")
	replicas := []service.BookingService{newBookingService(), newBookingService(), newBookingService()}

	totalGuests := 30
	var wg sync.WaitGroup
	var mu sync.Mutex
	var created int
	var conflicts int

	wg.Add(totalGuests)
	for i := 0; i < totalGuests; i++ {
		go func(idx int) {
			defer wg.Done()
			svc := replicas[idx%len(replicas)]
			_, err := svc.CreateBooking(t.Context(), service.CreateBookingInput{
				ListingID: listing.ID,
				UserID:    uint(100 + idx),
				OwnerID:   listing.OwnerID,
				StartDate: future(10 + idx%3),
				EndDate:   future(14),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, service.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created, "only one of the overlapping requests may win")
	assert.Equal(t, totalGuests-1, conflicts)

	var count int64
	testDB.Model(&models.Booking{}).Where("listing_id = ?", listing.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

// Test: touching ranges on different replicas both succeed
func TestTouchingRanges_AcrossReplicas(t *testing.T) {
	cleanTables()
	listing := createTestListing(t, "Beachside Bungalow")

	_, err := newBookingService().CreateBooking(t.Context(), service.CreateBookingInput{
		ListingID: listing.ID, UserID: 2, OwnerID: hostID, StartDate: future(5), EndDate: future(8),
	})
	require.NoError(t, err)

	_, err = newBookingService().CreateBooking(t.Context(), service.CreateBookingInput{
		ListingID: listing.ID, UserID: 3, OwnerID: hostID, StartDate: future(8), EndDate: future(10),
	})
	assert.NoError(t, err)
}

// Test: the exclusion constraint rejects an overlapping row written around the ledger
func TestExclusionConstraint(t *testing.T) {
	cleanTables()
	listing := createTestListing(t, "App Academy")
	repo := repository.NewBookingRepository(testDB)

	start := models.DateOf(time.Now().AddDate(0, 0, 20))
	first := &models.Booking{
		ListingID: listing.ID, UserID: 2,
		StartDate: datatypes.Date(start), EndDate: datatypes.Date(start.AddDate(0, 0, 4)),
	}
	require.NoError(t, repo.Create(t.Context(), nil, first))

	adjacent := &models.Booking{
		ListingID: listing.ID, UserID: 3,
		StartDate: datatypes.Date(start.AddDate(0, 0, 4)), EndDate: datatypes.Date(start.AddDate(0, 0, 6)),
	}
	require.NoError(t, repo.Create(t.Context(), nil, adjacent), "half-open ranges that touch must not collide")

	overlapping := &models.Booking{
		ListingID: listing.ID, UserID: 4,
		StartDate: datatypes.Date(start.AddDate(0, 0, 2)), EndDate: datatypes.Date(start.AddDate(0, 0, 5)),
	}
	err := repo.Create(t.Context(), nil, overlapping)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "expected a postgres error, got %v", err)
	assert.Equal(t, "23P01", pgErr.Code)
}

// Test: concurrent updates moving two bookings onto the same free nights → one wins
func TestConcurrentUpdate(t *testing.T) {
	cleanTables()
	listing := createTestListing(t, "Lake House")
	svc := newBookingService()

	var ids []uint
	for i, start := range []int{30, 40} {
		b, err := svc.CreateBooking(t.Context(), service.CreateBookingInput{
			ListingID: listing.ID, UserID: uint(10 + i), OwnerID: hostID,
			StartDate: future(start), EndDate: future(start + 2),
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(id, userID uint) {
			defer wg.Done()
			_, err := newBookingService().UpdateBooking(t.Context(), service.UpdateBookingInput{
				BookingID: id, UserID: userID, StartDate: future(50), EndDate: future(53),
			})
			errs <- err
		}(id, uint(10+i))
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1, fmt.Sprint(failures))
	assert.ErrorIs(t, failures[0], service.ErrConflict)
}

// Test: purging a listing removes its bookings despite the foreign key
func TestPurgeListing(t *testing.T) {
	cleanTables()
	listing := createTestListing(t, "Old Barn")
	svc := newBookingService()

	_, err := svc.CreateBooking(t.Context(), service.CreateBookingInput{
		ListingID: listing.ID, UserID: 2, OwnerID: hostID, StartDate: future(3), EndDate: future(5),
	})
	require.NoError(t, err)

	require.NoError(t, svc.PurgeListing(t.Context(), listing.ID))

	var count int64
	testDB.Model(&models.Booking{}).Where("listing_id = ?", listing.ID).Count(&count)
	assert.Zero(t, count)
}

// Test: migrating an existing schema keeps exactly one exclusion constraint
func TestMigrate_Idempotent(t *testing.T) {
	require.NoError(t, database.Migrate(testDB))

	var count int64
	require.NoError(t, testDB.Raw(
		"SELECT count(*) FROM pg_constraint WHERE conname = 'bookings_no_overlap'").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

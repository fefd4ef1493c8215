package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windbnb/booking-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Listing{}, &models.Booking{}))
	return db
}

func day(d int) datatypes.Date {
	return datatypes.Date(time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC))
}

func TestBookingRepository_FindByListingID_Ordered(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	for _, b := range []models.Booking{
		{ListingID: 1, UserID: 2, StartDate: day(10), EndDate: day(12)},
		{ListingID: 1, UserID: 3, StartDate: day(1), EndDate: day(4)},
		{ListingID: 2, UserID: 3, StartDate: day(1), EndDate: day(4)},
	} {
		b := b
		require.NoError(t, repo.Create(ctx, nil, &b))
	}

	got, err := repo.FindByListingID(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-01", models.FormatDate(got[0].Start()))
	assert.Equal(t, "2025-03-10", models.FormatDate(got[1].Start()))
}

func TestBookingRepository_FindByUserID_PreloadsListing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewListingRepository(db).Upsert(ctx, &models.Listing{ID: 5, OwnerID: 1, Name: "Loft"}))

	repo := NewBookingRepository(db)
	require.NoError(t, repo.Create(ctx, nil, &models.Booking{ListingID: 5, UserID: 9, StartDate: day(1), EndDate: day(2)}))

	got, err := repo.FindByUserID(ctx, 9)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Listing)
	assert.Equal(t, "Loft", got[0].Listing.Name)
}

func TestBookingRepository_UpdateDatesAndDelete_Missing(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	err := repo.UpdateDates(ctx, nil, &models.Booking{ID: 42, StartDate: day(1), EndDate: day(2)})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, nil, 42), gorm.ErrRecordNotFound)
}

func TestBookingRepository_UpdateDates(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := &models.Booking{ListingID: 1, UserID: 2, StartDate: day(1), EndDate: day(4)}
	require.NoError(t, repo.Create(ctx, nil, b))

	b.StartDate, b.EndDate = day(5), day(7)
	require.NoError(t, repo.UpdateDates(ctx, nil, b))

	got, err := repo.FindByID(ctx, nil, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", models.FormatDate(got.Start()))
	assert.Equal(t, "2025-03-07", models.FormatDate(got.End()))
	assert.Equal(t, uint(2), got.UserID)
}

func TestBookingRepository_DeleteByListingID(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, nil, &models.Booking{ListingID: 1, UserID: 2, StartDate: day(1), EndDate: day(2)}))
	require.NoError(t, repo.Create(ctx, nil, &models.Booking{ListingID: 1, UserID: 3, StartDate: day(2), EndDate: day(3)}))
	require.NoError(t, repo.Create(ctx, nil, &models.Booking{ListingID: 2, UserID: 3, StartDate: day(2), EndDate: day(3)}))

	n, err := repo.DeleteByListingID(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := repo.FindByListingID(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestListingRepository_UpsertAndDelete(t *testing.T) {
	db := setupDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Listing{ID: 3, OwnerID: 1, Name: "Cabin", Price: 100}))
	require.NoError(t, repo.Upsert(ctx, &models.Listing{ID: 3, OwnerID: 1, Name: "Cabin", Price: 120}))

	got, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Price)

	require.NoError(t, repo.Delete(ctx, nil, 3))
	_, err = repo.FindByID(ctx, 3)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

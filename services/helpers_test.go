package services

import (
	"context"
	"testing"
	"time"

	"hotel-pms/config"
	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.AutoMigrate(db))
	return db
}

func day(s string) time.Time {
	d, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedHotel(t *testing.T, db *gorm.DB, name string) models.Hotel {
	t.Helper()
	h := models.Hotel{Name: name, Address: "1 Galle Road", Phone: "+94112345678", Email: "desk@example.com"}
	require.NoError(t, db.Create(&h).Error)
	return h
}

func seedRoom(t *testing.T, db *gorm.DB, hotelID uint, number, roomType string, price float64) models.Room {
	t.Helper()
	r := models.Room{
		HotelID:      hotelID,
		Number:       number,
		Type:         roomType,
		BasePrice:    models.NewMoney(price),
		CurrentPrice: models.NewMoney(price),
		MaxOccupancy: 2,
		Status:       models.RoomAvailable,
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// seedGuest leaves the email empty so no confirmation mail is attempted.
func seedGuest(t *testing.T, db *gorm.DB, first, identity string) models.Guest {
	t.Helper()
	g := models.Guest{
		FirstName:      first,
		LastName:       "Perera",
		IdentityType:   models.IdentityPassport,
		IdentityNumber: identity,
		QRToken:        first + "-" + identity,
	}
	require.NoError(t, db.Create(&g).Error)
	return g
}

func book(t *testing.T, svc *ReservationService, guestID uint, roomIDs []uint, in, out string) *models.Reservation {
	t.Helper()
	res, err := svc.Create(context.Background(), ReservationInput{
		GuestID:  guestID,
		RoomIDs:  roomIDs,
		CheckIn:  in,
		CheckOut: out,
	})
	require.NoError(t, err)
	return res
}

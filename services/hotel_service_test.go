package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotelService_CreateTrimsInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewHotelService(db)

	hotel, err := svc.Create(context.Background(), HotelInput{
		Name:        "  Galle Face  ",
		Address:     " 2 Galle Road ",
		Phone:       " +94112541010 ",
		Email:       " reservations@gallefacehotel.com ",
		Description: " Colonial era ",
	})
	require.NoError(t, err)

	var stored models.Hotel
	require.NoError(t, db.First(&stored, hotel.ID).Error)
	assert.Equal(t, "Galle Face", stored.Name)
	assert.Equal(t, "2 Galle Road", stored.Address)
	assert.Equal(t, "+94112541010", stored.Phone)
	assert.Equal(t, "reservations@gallefacehotel.com", stored.Email)
	assert.Equal(t, "Colonial era", stored.Description)
}

func TestHotelService_CreateRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewHotelService(db)

	tests := []struct {
		name string
		in   HotelInput
	}{
		{"bad email", HotelInput{Name: "A", Address: "B", Phone: "C", Email: "not-an-email"}},
		{"blank name", HotelInput{Name: "   ", Address: "B", Phone: "C", Email: "a@b.lk"}},
		{"missing phone", HotelInput{Name: "A", Address: "B", Email: "a@b.lk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Hotel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHotelService_ListIsNeverNil(t *testing.T) {
	svc := NewHotelService(newTestDB(t))

	hotels, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, hotels)
	assert.Empty(t, hotels)
}

func TestHotelService_DeleteWithActiveReservations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	hotels := NewHotelService(db)
	reservations := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Kandy Lake")
	room := seedRoom(t, db, hotel.ID, "101", "DOUBLE", 100)
	guest := seedGuest(t, db, "Nimal", "N1234567")
	book(t, reservations, guest.ID, []uint{room.ID}, "2025-06-01", "2025-06-03")

	err := hotels.Delete(ctx, hotel.ID)
	assert.ErrorIs(t, err, ErrConflict)

	empty := seedHotel(t, db, "Empty")
	seedRoom(t, db, empty.ID, "1", "SINGLE", 50)
	require.NoError(t, hotels.Delete(ctx, empty.ID))

	_, err = hotels.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var rooms int64
	require.NoError(t, db.Model(&models.Room{}).Where("hotel_id = ?", empty.ID).Count(&rooms).Error)
	assert.Zero(t, rooms)

	assert.ErrorIs(t, hotels.Delete(ctx, 9999), ErrNotFound)
}

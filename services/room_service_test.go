package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService_CreateDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()
	hotel := seedHotel(t, db, "Trinco")

	room, err := svc.Create(ctx, RoomInput{HotelID: hotel.ID, Number: " 12 ", Type: "double", BasePrice: models.NewMoney(90)})
	require.NoError(t, err)
	assert.Equal(t, "12", room.Number)
	assert.Equal(t, "DOUBLE", room.Type)
	assert.Equal(t, models.NewMoney(90), room.CurrentPrice)
	assert.Equal(t, models.RoomAvailable, room.Status)

	_, err = svc.Create(ctx, RoomInput{HotelID: hotel.ID, Number: "12", Type: "SINGLE", BasePrice: models.NewMoney(60)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(ctx, RoomInput{HotelID: 9999, Number: "1", Type: "SINGLE", BasePrice: models.NewMoney(60)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, RoomInput{HotelID: hotel.ID, Number: "13", Type: "SINGLE"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoomService_Available(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rooms := NewRoomService(db)
	reservations := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Jaffna")
	r1 := seedRoom(t, db, hotel.ID, "1", "DOUBLE", 100)
	r2 := seedRoom(t, db, hotel.ID, "2", "DOUBLE", 100)
	r3 := seedRoom(t, db, hotel.ID, "3", "SUITE", 250)
	r4 := seedRoom(t, db, hotel.ID, "4", "DOUBLE", 100)
	require.NoError(t, db.Model(&r4).Update("status", models.RoomMaintenance).Error)
	guest := seedGuest(t, db, "Tharaka", "P600")
	book(t, reservations, guest.ID, []uint{r1.ID}, "2025-12-20", "2025-12-24")

	free, err := rooms.Available(ctx, day("2025-12-22"), day("2025-12-23"), "", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r2.ID, r3.ID}, roomIDs(free))

	free, err = rooms.Available(ctx, day("2025-12-22"), day("2025-12-23"), "double", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, roomIDs(free))

	free, err = rooms.Available(ctx, day("2025-12-24"), day("2025-12-26"), "", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r1.ID, r2.ID, r3.ID}, roomIDs(free))

	_, err = rooms.Available(ctx, day("2025-12-24"), day("2025-12-24"), "", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoomService_AvailabilityMatrix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rooms := NewRoomService(db)
	reservations := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Anuradhapura")
	r1 := seedRoom(t, db, hotel.ID, "1", "DOUBLE", 100)
	r2 := seedRoom(t, db, hotel.ID, "2", "DOUBLE", 100)
	r3 := seedRoom(t, db, hotel.ID, "3", "DOUBLE", 100)
	require.NoError(t, db.Model(&r3).Update("status", models.RoomMaintenance).Error)
	guest := seedGuest(t, db, "Ishara", "P700")

	arriving := book(t, reservations, guest.ID, []uint{r1.ID}, "2026-01-02", "2026-01-04")
	inHouse := book(t, reservations, guest.ID, []uint{r2.ID}, "2026-01-01", "2026-01-03")
	_, err := reservations.CheckIn(ctx, inHouse.ID)
	require.NoError(t, err)

	days, err := rooms.Availability(ctx, day("2026-01-01"), day("2026-01-04"), "")
	require.NoError(t, err)
	require.Len(t, days, 4)

	statuses := func(d models.AvailabilityDay) []string {
		out := make([]string, 0, len(d.Rooms))
		for _, c := range d.Rooms {
			out = append(out, c.Status)
		}
		return out
	}
	want := [][]string{
		{models.DayAvailable, models.DayOccupied, models.DayMaintenance},
		{models.DayArriving, models.DayOccupied, models.DayMaintenance},
		{models.DayReserved, models.DayAvailable, models.DayMaintenance},
		{models.DayAvailable, models.DayAvailable, models.DayMaintenance},
	}
	for i, d := range days {
		if diff := cmp.Diff(want[i], statuses(d)); diff != "" {
			t.Errorf("day %s mismatch (-want +got):\n%s", d.Date, diff)
		}
	}
	assert.Equal(t, "2026-01-01", days[0].Date)
	assert.Equal(t, 1, days[0].Available)
	assert.Equal(t, 2, days[3].Available)
	require.NotNil(t, days[1].Rooms[0].ReservationID)
	assert.Equal(t, arriving.ID, *days[1].Rooms[0].ReservationID)

	cells, err := rooms.DayStatus(ctx, day("2026-01-02"))
	require.NoError(t, err)
	assert.Equal(t, want[1], statuses(models.AvailabilityDay{Rooms: cells}))

	_, err = rooms.Availability(ctx, day("2026-01-01"), day("2027-01-02"), "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = rooms.Availability(ctx, day("2026-01-05"), day("2026-01-01"), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoomService_DeleteHeldRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rooms := NewRoomService(db)
	reservations := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Hikkaduwa")
	held := seedRoom(t, db, hotel.ID, "1", "DOUBLE", 100)
	free := seedRoom(t, db, hotel.ID, "2", "DOUBLE", 100)
	guest := seedGuest(t, db, "Chamara", "P800")
	book(t, reservations, guest.ID, []uint{held.ID}, "2026-02-01", "2026-02-02")

	assert.ErrorIs(t, rooms.Delete(ctx, held.ID), ErrConflict)
	require.NoError(t, rooms.Delete(ctx, free.ID))
	_, err := rooms.Get(ctx, free.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func roomIDs(rooms []models.Room) []uint {
	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationService_CreateRejectsOverlap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Negombo Beach")
	r101 := seedRoom(t, db, hotel.ID, "101", "DOUBLE", 120)
	r102 := seedRoom(t, db, hotel.ID, "102", "DOUBLE", 120)
	guest := seedGuest(t, db, "Amaya", "P100")

	first := book(t, svc, guest.ID, []uint{r101.ID}, "2025-07-10", "2025-07-13")
	assert.Equal(t, models.ReservationConfirmed, first.Status)
	assert.Equal(t, models.MealRoomOnly, first.MealPlan)
	assert.Equal(t, 1, first.Adults)
	require.Len(t, first.Rooms, 1)

	var room models.Room
	require.NoError(t, db.First(&room, r101.ID).Error)
	assert.Equal(t, models.RoomReserved, room.Status)

	tests := []struct {
		name    string
		rooms   []uint
		in, out string
		wantErr error
	}{
		{"overlapping middle", []uint{r101.ID}, "2025-07-11", "2025-07-12", ErrRoomUnavailable},
		{"overlapping start", []uint{r101.ID, r102.ID}, "2025-07-08", "2025-07-11", ErrRoomUnavailable},
		{"checkout before checkin", []uint{r102.ID}, "2025-07-12", "2025-07-10", ErrValidation},
		{"same day", []uint{r102.ID}, "2025-07-12", "2025-07-12", ErrValidation},
		{"unknown room", []uint{9999}, "2025-07-20", "2025-07-21", ErrValidation},
		{"no rooms", nil, "2025-07-20", "2025-07-21", ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, ReservationInput{GuestID: guest.ID, RoomIDs: tt.rooms, CheckIn: tt.in, CheckOut: tt.out})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// back-to-back stays share the turnover day
	next := book(t, svc, guest.ID, []uint{r101.ID}, "2025-07-13", "2025-07-15")
	assert.NotZero(t, next.ID)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestReservationService_MaintenanceRoomIsUnavailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Ella")
	room := seedRoom(t, db, hotel.ID, "7", "SUITE", 300)
	require.NoError(t, db.Model(&room).Update("status", models.RoomMaintenance).Error)
	guest := seedGuest(t, db, "Kasun", "P200")

	_, err := svc.Create(context.Background(), ReservationInput{
		GuestID: guest.ID, RoomIDs: []uint{room.ID}, CheckIn: "2025-08-01", CheckOut: "2025-08-02",
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestReservationService_StayLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReservationService(db, nil, "")
	folios := NewFolioService(db)

	hotel := seedHotel(t, db, "Sigiriya Lodge")
	room := seedRoom(t, db, hotel.ID, "201", "DOUBLE", 150)
	guest := seedGuest(t, db, "Dilani", "P300")
	res := book(t, svc, guest.ID, []uint{room.ID}, "2025-09-01", "2025-09-03")

	_, err := svc.CheckOut(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	checkedIn, err := svc.CheckIn(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCheckedIn, checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)

	var stored models.Room
	require.NoError(t, db.First(&stored, room.ID).Error)
	assert.Equal(t, models.RoomOccupied, stored.Status)

	folio, err := folios.ByReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FolioOpen, folio.Status)

	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: "room_charge", Amount: models.NewMoney(150)}, "desk")
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, res.ID)
	assert.ErrorIs(t, err, ErrBalanceOutstanding)

	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LinePayment, Amount: models.NewMoney(150)}, "desk")
	require.NoError(t, err)

	out, err := svc.CheckOut(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCheckedOut, out.Status)

	require.NoError(t, db.First(&stored, room.ID).Error)
	assert.Equal(t, models.RoomDirty, stored.Status)

	var tasks []models.HousekeepingTask
	require.NoError(t, db.Where("room_id = ?", room.ID).Find(&tasks).Error)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskCleaning, tasks[0].TaskType)

	folio, err = folios.Get(ctx, folio.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FolioSettled, folio.Status)

	_, err = svc.Cancel(ctx, res.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReservationService_CancelFreesRooms(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Mirissa")
	room := seedRoom(t, db, hotel.ID, "1", "CABANA", 80)
	guest := seedGuest(t, db, "Ruwan", "P400")
	res := book(t, svc, guest.ID, []uint{room.ID}, "2025-10-01", "2025-10-05")

	cancelled, err := svc.UpdateStatus(ctx, res.ID, "cancelled", "")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled by front desk", cancelled.CancellationReason)

	var stored models.Room
	require.NoError(t, db.First(&stored, room.ID).Error)
	assert.Equal(t, models.RoomAvailable, stored.Status)

	// the dates are free again
	book(t, svc, guest.ID, []uint{room.ID}, "2025-10-02", "2025-10-04")
}

func TestReservationService_FutureBookingKeepsRoomStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Bentota")
	room := seedRoom(t, db, hotel.ID, "101", "DOUBLE", 150)
	guest := seedGuest(t, db, "Dilini", "P500")

	roomStatus := func() string {
		t.Helper()
		var stored models.Room
		require.NoError(t, db.First(&stored, room.ID).Error)
		return stored.Status
	}

	inHouse := book(t, svc, guest.ID, []uint{room.ID}, "2025-09-01", "2025-09-05")
	_, err := svc.CheckIn(ctx, inHouse.ID)
	require.NoError(t, err)

	october := book(t, svc, guest.ID, []uint{room.ID}, "2025-10-01", "2025-10-03")
	november := book(t, svc, guest.ID, []uint{room.ID}, "2025-11-01", "2025-11-03")
	assert.Equal(t, models.RoomOccupied, roomStatus())

	_, err = svc.Cancel(ctx, november.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, roomStatus())

	// a reserved room stays reserved while another booking still holds it
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", models.RoomReserved).Error)
	_, err = svc.Cancel(ctx, inHouse.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	third := book(t, svc, guest.ID, []uint{room.ID}, "2025-12-01", "2025-12-03")
	_, err = svc.Cancel(ctx, third.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, roomStatus())

	_, err = svc.Cancel(ctx, october.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, roomStatus())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.ReservationConfirmed, models.ReservationCheckedIn))
	assert.True(t, CanTransition(models.ReservationCheckedIn, models.ReservationCheckedOut))
	assert.False(t, CanTransition(models.ReservationCheckedOut, models.ReservationCheckedIn))
	assert.False(t, CanTransition(models.ReservationCancelled, models.ReservationConfirmed))
}

package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRequest_CompletePostsCharge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reservations := NewReservationService(db, nil, "")
	requests := NewServiceRequestService(db)
	folios := NewFolioService(db)

	hotel := seedHotel(t, db, "Unawatuna")
	room := seedRoom(t, db, hotel.ID, "5", "DOUBLE", 100)
	guest := seedGuest(t, db, "Hiruni", "P1200")
	res := book(t, reservations, guest.ID, []uint{room.ID}, "2025-09-10", "2025-09-12")

	_, err := requests.Create(ctx, ServiceRequestInput{Type: "laundry", ChargeAmount: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = requests.Create(ctx, ServiceRequestInput{Type: "laundry", Priority: "whenever"})
	assert.ErrorIs(t, err, ErrValidation)

	req, err := requests.Create(ctx, ServiceRequestInput{
		ReservationID: &res.ID,
		Type:          " laundry ",
		Description:   "Two shirts",
		ChargeAmount:  models.NewMoney(15),
	})
	require.NoError(t, err)
	assert.Equal(t, "LAUNDRY", req.Type)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	require.NotNil(t, req.RoomID)
	assert.Equal(t, room.ID, *req.RoomID)

	assigned, err := requests.Assign(ctx, req.ID, "  Kamal ")
	require.NoError(t, err)
	assert.Equal(t, "Kamal", assigned.AssignedTo)

	done, err := requests.UpdateStatus(ctx, req.ID, "completed", "Kamal")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	folio, err := folios.ByReservation(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, folio.LineItems, 1)
	assert.Equal(t, models.LineService, folio.LineItems[0].Type)
	assert.Equal(t, "LAUNDRY: Two shirts", folio.LineItems[0].Description)
	assert.Equal(t, models.NewMoney(15), folio.Balance)

	_, err = requests.UpdateStatus(ctx, req.ID, models.RequestInProgress, "Kamal")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = requests.Assign(ctx, req.ID, "Nuwan")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	pending, err := requests.List(ctx, "pending")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestServiceRequest_CompletesWhenFolioSettled(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reservations := NewReservationService(db, nil, "")
	requests := NewServiceRequestService(db)
	folios := NewFolioService(db)

	hotel := seedHotel(t, db, "Hikkaduwa")
	room := seedRoom(t, db, hotel.ID, "8", "DOUBLE", 100)
	guest := seedGuest(t, db, "Kasun", "P1300")
	res := book(t, reservations, guest.ID, []uint{room.ID}, "2025-09-10", "2025-09-12")
	_, err := reservations.CheckIn(ctx, res.ID)
	require.NoError(t, err)

	folio, err := folios.ByReservation(ctx, res.ID)
	require.NoError(t, err)
	_, err = folios.Settle(ctx, folio.ID)
	require.NoError(t, err)

	req, err := requests.Create(ctx, ServiceRequestInput{
		ReservationID: &res.ID,
		Type:          "minibar",
		ChargeAmount:  models.NewMoney(20),
	})
	require.NoError(t, err)

	done, err := requests.UpdateStatus(ctx, req.ID, models.RequestCompleted, "Kamal")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, done.Status)

	after, err := folios.ByReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FolioSettled, after.Status)
	assert.Empty(t, after.LineItems)
	assert.Zero(t, after.Balance)
}

func TestHousekeeping_RoomStatusFollowsTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tasks := NewHousekeepingService(db)

	hotel := seedHotel(t, db, "Polonnaruwa")
	room := seedRoom(t, db, hotel.ID, "9", "DOUBLE", 100)

	roomStatus := func() string {
		var r models.Room
		require.NoError(t, db.First(&r, room.ID).Error)
		return r.Status
	}

	maint, err := tasks.Create(ctx, HousekeepingTaskInput{RoomID: room.ID, TaskType: "maintenance", Notes: "AC leaking"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, maint.Status)
	assert.Equal(t, room.Number, maint.Room.Number)
	assert.Equal(t, models.RoomMaintenance, roomStatus())

	_, err = tasks.UpdateStatus(ctx, maint.ID, models.TaskVerified)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = tasks.UpdateStatus(ctx, maint.ID, models.TaskInProgress)
	require.NoError(t, err)
	done, err := tasks.UpdateStatus(ctx, maint.ID, models.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, done.Status)
	assert.Equal(t, models.RoomAvailable, roomStatus())

	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", models.RoomDirty).Error)
	clean, err := tasks.Create(ctx, HousekeepingTaskInput{RoomID: room.ID, TaskType: models.TaskCleaning, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomDirty, roomStatus())
	_, err = tasks.UpdateStatus(ctx, clean.ID, models.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, roomStatus())

	_, err = tasks.Create(ctx, HousekeepingTaskInput{RoomID: 9999, TaskType: models.TaskCleaning})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tasks.Create(ctx, HousekeepingTaskInput{RoomID: room.ID, TaskType: "painting"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := tasks.List(ctx, models.TaskCompleted, room.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

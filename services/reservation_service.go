package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reservationTransitions is the only set of moves the generic status
// endpoint accepts.
var reservationTransitions = map[string][]string{
	models.ReservationPending:   {models.ReservationConfirmed, models.ReservationCancelled},
	models.ReservationConfirmed: {models.ReservationCheckedIn, models.ReservationCancelled},
	models.ReservationCheckedIn: {models.ReservationOccupied, models.ReservationCheckedOut},
	models.ReservationOccupied:  {models.ReservationCheckedOut},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ReservationInput struct {
	HotelID  uint   `json:"hotelId"`
	GuestID  uint   `json:"guestId"`
	RoomIDs  []uint `json:"roomIds"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
	MealPlan string `json:"mealPlan"`
	Notes    string `json:"notes"`
}

type ReservationFilter struct {
	Status string
	Date   *time.Time
}

type ReservationService struct {
	DB          *gorm.DB
	Mailer      *utils.Mailer
	FrontendURL string
}

func NewReservationService(db *gorm.DB, mailer *utils.Mailer, frontendURL string) *ReservationService {
	return &ReservationService{DB: db, Mailer: mailer, FrontendURL: frontendURL}
}

func (s *ReservationService) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	q := s.DB.WithContext(ctx).Preload("Guest").Preload("Rooms").Order("check_in DESC, id DESC")
	if st := strings.ToUpper(strings.TrimSpace(f.Status)); st != "" {
		q = q.Where("status = ?", st)
	}
	if f.Date != nil {
		d := utils.DateOnly(*f.Date)
		q = q.Where("check_in <= ? AND check_out > ?", d, d)
	}
	if err := q.Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := s.DB.WithContext(ctx).Preload("Guest").Preload("Rooms").First(&res, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

// Create books the rooms as CONFIRMED. The overlap check and the insert
// run in one transaction with the rooms locked.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	checkIn, err := utils.ParseDate(in.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid checkIn", ErrValidation)
	}
	checkOut, err := utils.ParseDate(in.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid checkOut", ErrValidation)
	}
	switch {
	case in.GuestID == 0:
		return nil, fmt.Errorf("%w: guestId is required", ErrValidation)
	case len(in.RoomIDs) == 0:
		return nil, fmt.Errorf("%w: at least one room is required", ErrValidation)
	case !checkOut.After(checkIn):
		return nil, fmt.Errorf("%w: checkOut must be after checkIn", ErrValidation)
	}
	if in.Adults == 0 {
		in.Adults = 1
	}
	if in.Adults < 1 || in.Children < 0 {
		return nil, fmt.Errorf("%w: invalid guest count", ErrValidation)
	}
	mealPlan := strings.ToUpper(strings.TrimSpace(in.MealPlan))
	if mealPlan == "" {
		mealPlan = models.MealRoomOnly
	}

	var res models.Reservation
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, in.GuestID).Error; err != nil {
			if notFound(err) == ErrNotFound {
				return fmt.Errorf("%w: guest %d does not exist", ErrValidation, in.GuestID)
			}
			return err
		}

		var rooms []models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", in.RoomIDs).Order("id").Find(&rooms).Error; err != nil {
			return err
		}
		if len(rooms) != len(uniqueIDs(in.RoomIDs)) {
			return fmt.Errorf("%w: one or more rooms do not exist", ErrValidation)
		}

		hotelID := in.HotelID
		if hotelID == 0 {
			hotelID = rooms[0].HotelID
		}
		for _, rm := range rooms {
			if rm.HotelID != hotelID {
				return fmt.Errorf("%w: room %s does not belong to hotel %d", ErrValidation, rm.Number, hotelID)
			}
			if rm.Status == models.RoomMaintenance {
				return fmt.Errorf("%w: room %s is under maintenance", ErrRoomUnavailable, rm.Number)
			}
		}

		busy, err := busyRoomIDs(tx, checkIn, checkOut, in.RoomIDs, 0)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return fmt.Errorf("%w: %s already booked for these dates", ErrRoomUnavailable, roomNumbers(rooms, busy))
		}

		res = models.Reservation{
			HotelID:  hotelID,
			GuestID:  guest.ID,
			Rooms:    rooms,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Status:   models.ReservationConfirmed,
			Adults:   in.Adults,
			Children: in.Children,
			MealPlan: mealPlan,
			Notes:    strings.TrimSpace(in.Notes),
		}
		if err := tx.Omit("Rooms.*", "Guest").Create(&res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		// Rooms in house or awaiting cleaning keep their current status.
		return tx.Model(&models.Room{}).
			Where("id IN ? AND status = ?", res.RoomIDs(), models.RoomAvailable).
			Update("status", models.RoomReserved).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Get(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"reservation_id": created.ID, "rooms": len(created.Rooms)}).Info("reservation created")

	go s.sendConfirmation(*created)
	return created, nil
}

func (s *ReservationService) sendConfirmation(res models.Reservation) {
	if res.Guest.Email == "" {
		return
	}
	var hotel models.Hotel
	if err := s.DB.First(&hotel, res.HotelID).Error; err != nil {
		log.WithError(err).WithField("reservation_id", res.ID).Warn("confirmation email skipped: hotel lookup failed")
		return
	}
	rooms := make([]utils.RoomInfo, 0, len(res.Rooms))
	for _, rm := range res.Rooms {
		rooms = append(rooms, utils.RoomInfo{Number: rm.Number, Type: rm.Type})
	}
	err := s.Mailer.SendReservationConfirmation(utils.ReservationEmail{
		To:            res.Guest.Email,
		GuestName:     res.Guest.FullName(),
		ReservationID: res.ID,
		HotelName:     hotel.Name,
		Rooms:         rooms,
		CheckIn:       utils.FormatDate(res.CheckIn),
		CheckOut:      utils.FormatDate(res.CheckOut),
		QRLink:        strings.TrimRight(s.FrontendURL, "/") + "/guest/qr/" + res.Guest.QRToken,
	})
	if err != nil {
		log.WithError(err).WithField("reservation_id", res.ID).Warn("confirmation email failed")
	}
}

// CheckIn moves a confirmed reservation in house and opens its folio.
func (s *ReservationService) CheckIn(ctx context.Context, id uint) (*models.Reservation, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := lockReservation(tx, id)
		if err != nil {
			return err
		}
		if res.Status != models.ReservationConfirmed && res.Status != models.ReservationPending {
			return fmt.Errorf("%w: cannot check in a %s reservation", ErrInvalidTransition, res.Status)
		}
		now := time.Now().UTC()
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Updates(map[string]interface{}{
			"status":        models.ReservationCheckedIn,
			"checked_in_at": now,
		}).Error; err != nil {
			return err
		}
		if err := setRoomStatus(tx, res.RoomIDs(), models.RoomOccupied); err != nil {
			return err
		}
		_, err = ensureFolio(tx, res.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.WithField("reservation_id", id).Info("guest checked in")
	return s.Get(ctx, id)
}

// CheckOut requires a settled balance, releases the rooms to housekeeping
// and settles an open folio.
func (s *ReservationService) CheckOut(ctx context.Context, id uint) (*models.Reservation, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := lockReservation(tx, id)
		if err != nil {
			return err
		}
		if res.Status != models.ReservationCheckedIn && res.Status != models.ReservationOccupied {
			return fmt.Errorf("%w: cannot check out a %s reservation", ErrInvalidTransition, res.Status)
		}

		var folio models.Folio
		hasFolio := true
		if err := tx.Where("reservation_id = ?", res.ID).First(&folio).Error; err != nil {
			if notFound(err) != ErrNotFound {
				return err
			}
			hasFolio = false
		}
		if hasFolio && folio.Balance > 0 {
			return fmt.Errorf("%w: %s still due", ErrBalanceOutstanding, folio.Balance)
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Updates(map[string]interface{}{
			"status":         models.ReservationCheckedOut,
			"checked_out_at": now,
		}).Error; err != nil {
			return err
		}
		if err := setRoomStatus(tx, res.RoomIDs(), models.RoomDirty); err != nil {
			return err
		}
		for _, rm := range res.Rooms {
			task := models.HousekeepingTask{
				RoomID:   rm.ID,
				TaskType: models.TaskCleaning,
				Status:   models.TaskPending,
				Priority: models.PriorityHigh,
				Notes:    fmt.Sprintf("Checkout of reservation #%d", res.ID),
			}
			if err := tx.Omit("Room").Create(&task).Error; err != nil {
				return err
			}
		}
		if hasFolio && folio.Status == models.FolioOpen {
			return tx.Model(&folio).Updates(map[string]interface{}{
				"status":     models.FolioSettled,
				"settled_at": now,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithField("reservation_id", id).Info("guest checked out")
	return s.Get(ctx, id)
}

func (s *ReservationService) Cancel(ctx context.Context, id uint, reason string) (*models.Reservation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Cancelled by front desk"
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := lockReservation(tx, id)
		if err != nil {
			return err
		}
		return cancelReservation(tx, res, reason)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"reservation_id": id, "reason": reason}).Info("reservation cancelled")
	return s.Get(ctx, id)
}

// UpdateStatus applies one step of the transition table; check-in,
// check-out and cancel keep their side effects.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint, status, reason string) (*models.Reservation, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(res.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Status, status)
	}

	switch status {
	case models.ReservationCheckedIn:
		return s.CheckIn(ctx, id)
	case models.ReservationCheckedOut:
		return s.CheckOut(ctx, id)
	case models.ReservationCancelled:
		return s.Cancel(ctx, id, reason)
	}

	if err := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, res.Status).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func lockReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Rooms").First(&res, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

// cancelReservation marks res CANCELLED and frees rooms it was holding.
func cancelReservation(tx *gorm.DB, res *models.Reservation, reason string) error {
	if res.Status != models.ReservationPending && res.Status != models.ReservationConfirmed {
		return fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidTransition, res.Status)
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Updates(map[string]interface{}{
		"status":              models.ReservationCancelled,
		"cancellation_reason": reason,
	}).Error; err != nil {
		return err
	}
	ids := res.RoomIDs()
	if len(ids) == 0 {
		return nil
	}
	held, err := heldRoomIDs(tx, ids, res.ID)
	if err != nil {
		return err
	}
	release := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !containsID(held, id) {
			release = append(release, id)
		}
	}
	if len(release) == 0 {
		return nil
	}
	return tx.Model(&models.Room{}).
		Where("id IN ? AND status = ?", release, models.RoomReserved).
		Update("status", models.RoomAvailable).Error
}

// heldRoomIDs returns the rooms among roomIDs that another PENDING or
// CONFIRMED reservation still holds.
func heldRoomIDs(tx *gorm.DB, roomIDs []uint, excludeID uint) ([]uint, error) {
	var ids []uint
	err := tx.Table("reservation_rooms").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservations.status IN ? AND reservations.deleted_at IS NULL",
			[]string{models.ReservationPending, models.ReservationConfirmed}).
		Where("reservations.id <> ? AND reservation_rooms.room_id IN ?", excludeID, roomIDs).
		Distinct("reservation_rooms.room_id").
		Pluck("reservation_rooms.room_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check room holds: %w", err)
	}
	return ids, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func roomNumbers(rooms []models.Room, ids []uint) string {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var nums []string
	for _, rm := range rooms {
		if want[rm.ID] {
			nums = append(nums, "room "+rm.Number)
		}
	}
	return strings.Join(nums, ", ")
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	"gorm.io/gorm"
)

// MaxAvailabilityDays bounds the availability matrix window.
const MaxAvailabilityDays = 366

var roomStatuses = map[string]bool{
	models.RoomAvailable:   true,
	models.RoomReserved:    true,
	models.RoomOccupied:    true,
	models.RoomDirty:       true,
	models.RoomMaintenance: true,
}

type RoomInput struct {
	HotelID       uint         `json:"hotelId"`
	Number        string       `json:"number"`
	Type          string       `json:"type"`
	Floor         string       `json:"floor"`
	View          string       `json:"view"`
	BasePrice     models.Money `json:"basePrice"`
	PricePerNight models.Money `json:"pricePerNight"`
	MaxOccupancy  int          `json:"maxOccupancy"`
	Status        string       `json:"status"`
}

func (in *RoomInput) normalize() error {
	utils.TrimStrings(in)
	in.Type = strings.ToUpper(in.Type)
	in.Status = strings.ToUpper(in.Status)
	if in.Status == "" {
		in.Status = models.RoomAvailable
	}
	if in.BasePrice == 0 {
		in.BasePrice = in.PricePerNight
	}
	if in.PricePerNight == 0 {
		in.PricePerNight = in.BasePrice
	}
	if in.MaxOccupancy <= 0 {
		in.MaxOccupancy = 2
	}
	switch {
	case in.HotelID == 0:
		return fmt.Errorf("%w: hotelId is required", ErrValidation)
	case in.Number == "":
		return fmt.Errorf("%w: room number is required", ErrValidation)
	case in.Type == "":
		return fmt.Errorf("%w: room type is required", ErrValidation)
	case in.BasePrice <= 0:
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	case !roomStatuses[in.Status]:
		return fmt.Errorf("%w: unknown room status %q", ErrValidation, in.Status)
	}
	return nil
}

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := s.DB.WithContext(ctx).Order("hotel_id, number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) ByType(ctx context.Context, roomType string) ([]models.Room, error) {
	rooms := []models.Room{}
	err := s.DB.WithContext(ctx).
		Where("UPPER(type) = ?", strings.ToUpper(strings.TrimSpace(roomType))).
		Order("number").
		Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) ByHotel(ctx context.Context, hotelID uint) ([]models.Room, error) {
	rooms := []models.Room{}
	err := s.DB.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("number").Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var hotel models.Hotel
	if err := db.First(&hotel, in.HotelID).Error; err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, fmt.Errorf("%w: hotel %d does not exist", ErrValidation, in.HotelID)
		}
		return nil, err
	}

	room := models.Room{
		HotelID:      in.HotelID,
		Number:       in.Number,
		Type:         in.Type,
		Floor:        in.Floor,
		View:         in.View,
		BasePrice:    in.BasePrice,
		CurrentPrice: in.PricePerNight,
		MaxOccupancy: in.MaxOccupancy,
		Status:       in.Status,
	}
	if err := db.Create(&room).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: room number '%s' already exists", ErrConflict, room.Number)
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) (*models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.HotelID == 0 {
		in.HotelID = room.HotelID
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	room.HotelID = in.HotelID
	room.Number = in.Number
	room.Type = in.Type
	room.Floor = in.Floor
	room.View = in.View
	room.BasePrice = in.BasePrice
	room.CurrentPrice = in.PricePerNight
	room.MaxOccupancy = in.MaxOccupancy
	room.Status = in.Status

	if err := s.DB.WithContext(ctx).Save(room).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: room number '%s' already exists", ErrConflict, room.Number)
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return room, nil
}

// Delete refuses while an active reservation still holds the room.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	var held int64
	err := db.Table("reservation_rooms").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservation_rooms.room_id = ? AND reservations.status IN ? AND reservations.deleted_at IS NULL",
			id, models.ActiveReservationStatuses).
		Count(&held).Error
	if err != nil {
		return err
	}
	if held > 0 {
		return fmt.Errorf("%w: room is held by %d active reservations", ErrConflict, held)
	}
	return db.Delete(&models.Room{}, id).Error
}

// Available lists rooms outside maintenance with no active reservation
// overlapping [checkIn, checkOut).
func (s *RoomService) Available(ctx context.Context, checkIn, checkOut time.Time, roomType string, hotelID uint) ([]models.Room, error) {
	checkIn, checkOut = utils.DateOnly(checkIn), utils.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: checkOut must be after checkIn", ErrValidation)
	}
	db := s.DB.WithContext(ctx)

	busy, err := busyRoomIDs(db, checkIn, checkOut, nil, 0)
	if err != nil {
		return nil, err
	}

	q := db.Where("status <> ?", models.RoomMaintenance)
	if len(busy) > 0 {
		q = q.Where("id NOT IN ?", busy)
	}
	if roomType = strings.TrimSpace(roomType); roomType != "" {
		q = q.Where("UPPER(type) = ?", strings.ToUpper(roomType))
	}
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}

	rooms := []models.Room{}
	if err := q.Order("hotel_id, number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to query available rooms: %w", err)
	}
	return rooms, nil
}

// DayStatus reports every room's state on one date.
func (s *RoomService) DayStatus(ctx context.Context, date time.Time) ([]models.RoomDayStatus, error) {
	days, err := s.Availability(ctx, date, date, "")
	if err != nil {
		return nil, err
	}
	return days[0].Rooms, nil
}

// Availability builds the per-day room matrix for [from, to] inclusive
// from a single reservation query over the window.
func (s *RoomService) Availability(ctx context.Context, from, to time.Time, roomType string) ([]models.AvailabilityDay, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrValidation)
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > MaxAvailabilityDays {
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrValidation, MaxAvailabilityDays)
	}
	db := s.DB.WithContext(ctx)

	rooms := []models.Room{}
	q := db.Order("hotel_id, number")
	if roomType = strings.TrimSpace(roomType); roomType != "" {
		q = q.Where("UPPER(type) = ?", strings.ToUpper(roomType))
	}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}

	bookings, err := bookingsInWindow(db, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uint][]roomBooking, len(rooms))
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	out := make([]models.AvailabilityDay, 0, days)
	for d := 0; d < days; d++ {
		date := from.AddDate(0, 0, d)
		day := models.AvailabilityDay{
			Date:  utils.FormatDate(date),
			Rooms: make([]models.RoomDayStatus, 0, len(rooms)),
		}
		for _, room := range rooms {
			cell := dayCell(room, byRoom[room.ID], date)
			if cell.Status == models.DayAvailable {
				day.Available++
			}
			day.Rooms = append(day.Rooms, cell)
		}
		out = append(out, day)
	}
	return out, nil
}

func dayCell(room models.Room, bookings []roomBooking, date time.Time) models.RoomDayStatus {
	cell := models.RoomDayStatus{
		RoomID:     room.ID,
		RoomNumber: room.Number,
		RoomType:   room.Type,
		Status:     models.DayAvailable,
	}
	for _, b := range bookings {
		in, out := utils.DateOnly(b.CheckIn), utils.DateOnly(b.CheckOut)
		if date.Before(in) || !date.Before(out) {
			continue
		}
		id := b.ReservationID
		cell.ReservationID = &id
		switch {
		case b.Status == models.ReservationCheckedIn || b.Status == models.ReservationOccupied:
			cell.Status = models.DayOccupied
		case in.Equal(date):
			cell.Status = models.DayArriving
		default:
			cell.Status = models.DayReserved
		}
		return cell
	}
	if room.Status == models.RoomMaintenance {
		cell.Status = models.DayMaintenance
	}
	return cell
}

type roomBooking struct {
	RoomID        uint
	ReservationID uint
	CheckIn       time.Time
	CheckOut      time.Time
	Status        string
}

// bookingsInWindow returns (room, reservation) pairs for active
// reservations overlapping [from, to).
func bookingsInWindow(db *gorm.DB, from, to time.Time) ([]roomBooking, error) {
	var rows []roomBooking
	err := db.Table("reservation_rooms").
		Select("reservation_rooms.room_id AS room_id, reservations.id AS reservation_id, "+
			"reservations.check_in AS check_in, reservations.check_out AS check_out, reservations.status AS status").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservations.status IN ? AND reservations.deleted_at IS NULL", models.ActiveReservationStatuses).
		Where("reservations.check_in < ? AND reservations.check_out > ?", to, from).
		Order("reservations.check_in").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	return rows, nil
}

// busyRoomIDs returns the rooms (optionally limited to roomIDs) held by an
// active reservation overlapping [checkIn, checkOut). excludeID skips one
// reservation so it does not collide with itself.
func busyRoomIDs(db *gorm.DB, checkIn, checkOut time.Time, roomIDs []uint, excludeID uint) ([]uint, error) {
	q := db.Table("reservation_rooms").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservations.status IN ? AND reservations.deleted_at IS NULL", models.ActiveReservationStatuses).
		Where("reservations.check_in < ? AND reservations.check_out > ?", checkOut, checkIn)
	if len(roomIDs) > 0 {
		q = q.Where("reservation_rooms.room_id IN ?", roomIDs)
	}
	if excludeID != 0 {
		q = q.Where("reservations.id <> ?", excludeID)
	}
	var ids []uint
	if err := q.Distinct("reservation_rooms.room_id").Pluck("reservation_rooms.room_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to check room overlap: %w", err)
	}
	return ids, nil
}

func setRoomStatus(tx *gorm.DB, roomIDs []uint, status string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Room{}).Where("id IN ?", roomIDs).Update("status", status).Error
}

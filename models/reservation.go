package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReservationPending    = "PENDING"
	ReservationConfirmed  = "CONFIRMED"
	ReservationCheckedIn  = "CHECKED_IN"
	ReservationOccupied   = "OCCUPIED"
	ReservationCheckedOut = "CHECKED_OUT"
	ReservationCancelled  = "CANCELLED"
)

// ActiveReservationStatuses hold rooms for their stay dates.
var ActiveReservationStatuses = []string{
	ReservationPending,
	ReservationConfirmed,
	ReservationCheckedIn,
	ReservationOccupied,
}

const (
	MealRoomOnly     = "ROOM_ONLY"
	MealBreakfast    = "BREAKFAST"
	MealHalfBoard    = "HALF_BOARD"
	MealFullBoard    = "FULL_BOARD"
	MealAllInclusive = "ALL_INCLUSIVE"
)

const CancellationNoShow = "NO_SHOW"

type Reservation struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	HotelID uint  `gorm:"index" json:"hotelId"`
	GuestID uint  `gorm:"index;not null" json:"guestId"`
	Guest   Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`

	Rooms []Room `gorm:"many2many:reservation_rooms" json:"rooms"`

	CheckIn  time.Time `gorm:"index;not null" json:"checkIn"`
	CheckOut time.Time `gorm:"index;not null" json:"checkOut"`

	Status   string `gorm:"size:32;index;default:PENDING" json:"status"`
	Adults   int    `gorm:"default:1" json:"adults"`
	Children int    `gorm:"default:0" json:"children"`
	MealPlan string `gorm:"size:32;default:ROOM_ONLY" json:"mealPlan"`
	Notes    string `gorm:"type:text" json:"notes"`

	CancellationReason string     `gorm:"size:255" json:"cancellationReason,omitempty"`
	CheckedInAt        *time.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time `json:"checkedOutAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Nights counts whole nights between check-in and check-out.
func (r Reservation) Nights() int {
	n := int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

func (r Reservation) RoomIDs() []uint {
	ids := make([]uint, 0, len(r.Rooms))
	for _, rm := range r.Rooms {
		ids = append(ids, rm.ID)
	}
	return ids
}

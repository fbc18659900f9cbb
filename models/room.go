package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoomAvailable   = "AVAILABLE"
	RoomReserved    = "RESERVED"
	RoomOccupied    = "OCCUPIED"
	RoomDirty       = "DIRTY"
	RoomMaintenance = "MAINTENANCE"
)

// Day statuses reported by the availability endpoints.
const (
	DayAvailable   = "AVAILABLE"
	DayReserved    = "RESERVED"
	DayArriving    = "ARRIVING"
	DayOccupied    = "OCCUPIED"
	DayMaintenance = "MAINTENANCE"
)

type Room struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	HotelID uint  `gorm:"not null;uniqueIndex:idx_room_hotel_number" json:"hotelId"`
	Hotel   Hotel `gorm:"foreignKey:HotelID" json:"-"`

	Number string `gorm:"size:50;not null;uniqueIndex:idx_room_hotel_number" json:"number"`
	Type   string `gorm:"size:50;index" json:"type"`
	Floor  string `gorm:"size:10" json:"floor"`
	View   string `gorm:"size:50" json:"view"`

	BasePrice    Money  `gorm:"not null;default:0" json:"basePrice"`
	CurrentPrice Money  `gorm:"not null;default:0" json:"pricePerNight"`
	MaxOccupancy int    `gorm:"default:2" json:"maxOccupancy"`
	Status       string `gorm:"size:32;default:AVAILABLE;index" json:"status"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoomDayStatus is one cell of the availability matrix.
type RoomDayStatus struct {
	RoomID        uint   `json:"roomId"`
	RoomNumber    string `json:"roomNumber"`
	RoomType      string `json:"roomType"`
	Status        string `json:"status"`
	ReservationID *uint  `json:"reservationId,omitempty"`
}

type AvailabilityDay struct {
	Date      string          `json:"date"`
	Available int             `json:"available"`
	Rooms     []RoomDayStatus `json:"rooms"`
}

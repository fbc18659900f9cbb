package models

// RoomFilterCriteria is what the front desk pushes to the guest tablet.
type RoomFilterCriteria struct {
	CheckIn   string `json:"checkIn" binding:"required"`
	CheckOut  string `json:"checkOut" binding:"required"`
	RoomType  string `json:"roomType"`
	HotelID   uint   `json:"hotelId,omitempty"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
	UpdatedBy string `json:"updatedBy,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// GuestSelection is the room a guest picked on the tablet.
type GuestSelection struct {
	RoomID     uint   `json:"roomId" binding:"required"`
	RoomNumber string `json:"roomNumber"`
	RoomType   string `json:"roomType"`
	GuestName  string `json:"guestName"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Timestamp  int64  `json:"timestamp"`
}

package models

import "time"

const (
	FolioOpen    = "OPEN"
	FolioSettled = "SETTLED"
	FolioClosed  = "CLOSED"
)

const (
	LineRoomCharge   = "ROOM_CHARGE"
	LineService      = "SERVICE"
	LineFoodBeverage = "FOOD_BEVERAGE"
	LineTax          = "TAX"
	LineDiscount     = "DISCOUNT"
	LineAdjustment   = "ADJUSTMENT"
	LinePayment      = "PAYMENT"
	LineRefund       = "REFUND"
)

var LineItemTypes = []string{
	LineRoomCharge, LineService, LineFoodBeverage, LineTax,
	LineDiscount, LineAdjustment, LinePayment, LineRefund,
}

type Folio struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ReservationID uint        `gorm:"uniqueIndex;not null" json:"reservationId"`
	Reservation   Reservation `gorm:"foreignKey:ReservationID" json:"-"`

	Status        string `gorm:"size:16;default:OPEN;index" json:"status"`
	TotalCharges  Money  `gorm:"not null;default:0" json:"totalCharges"`
	TotalPayments Money  `gorm:"not null;default:0" json:"totalPayments"`
	Balance       Money  `gorm:"not null;default:0" json:"balance"`

	LineItems []LineItem `gorm:"foreignKey:FolioID" json:"lineItems"`

	SettledAt *time.Time `json:"settledAt,omitempty"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type LineItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	FolioID uint `gorm:"index;not null" json:"folioId"`

	Type         string     `gorm:"size:32;not null" json:"type"`
	Description  string     `gorm:"size:255" json:"description"`
	Amount       Money      `gorm:"not null" json:"amount"`
	RoomID       *uint      `gorm:"index" json:"roomId,omitempty"`
	BusinessDate *time.Time `gorm:"index" json:"businessDate,omitempty"`
	PostedBy     string     `gorm:"size:150" json:"postedBy"`
	PostedAt     time.Time  `json:"postedAt"`

	Voided     bool       `gorm:"default:false" json:"voided"`
	VoidedAt   *time.Time `json:"voidedAt,omitempty"`
	VoidedBy   string     `gorm:"size:150" json:"voidedBy,omitempty"`
	VoidReason string     `gorm:"size:255" json:"voidReason,omitempty"`
}

// Signed returns the item's contribution to (charges, payments).
func (li LineItem) Signed() (charge Money, payment Money) {
	if li.Voided {
		return 0, 0
	}
	switch li.Type {
	case LinePayment:
		return 0, li.Amount
	case LineRefund:
		return 0, -li.Amount
	case LineDiscount:
		return -li.Amount, 0
	default:
		return li.Amount, 0
	}
}

func IsLineItemType(t string) bool {
	for _, lt := range LineItemTypes {
		if lt == t {
			return true
		}
	}
	return false
}

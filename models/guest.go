package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	IdentityPassport       = "PASSPORT"
	IdentityNationalID     = "NATIONAL_ID"
	IdentityDrivingLicense = "DRIVING_LICENSE"
)

type Guest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName   string `gorm:"size:100;not null" json:"firstName"`
	LastName    string `gorm:"size:100;not null" json:"lastName"`
	Email       string `gorm:"size:150;index" json:"email"`
	Phone       string `gorm:"size:50" json:"phone"`
	Nationality string `gorm:"size:100" json:"nationality"`

	IdentityType      string `gorm:"size:32" json:"identityType"`
	IdentityNumber    string `gorm:"size:64;index" json:"identityNumber"`
	IdentityImagePath string `gorm:"size:255" json:"identityImagePath,omitempty"`

	// QRToken is what the guest QR code encodes; the image itself is rendered on demand.
	QRToken string `gorm:"size:64;uniqueIndex" json:"qrToken"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (g Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleSystemAdmin        = "SYSTEM_ADMIN"
	RoleOperationalManager = "OPERATIONAL_MANAGER"
	RoleServiceManager     = "SERVICE_MANAGER"
	RoleReceptionist       = "RECEPTIONIST"
)

// User is a staff account. Role-specific columns are only meaningful for
// their role and are cleared for the others on save.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password string `gorm:"size:255" json:"-"`
	FullName string `gorm:"size:255" json:"fullName"`
	Email    string `gorm:"size:150" json:"email"`
	Phone    string `gorm:"size:50" json:"phone"`
	Role     string `gorm:"size:32;index;not null" json:"role"`
	Active   bool   `json:"active"`

	AccessLevel string `gorm:"size:32" json:"accessLevel,omitempty"`
	Department  string `gorm:"size:100" json:"department,omitempty"`
	ServiceArea string `gorm:"size:100" json:"serviceArea,omitempty"`
	Shift       string `gorm:"size:32" json:"shift,omitempty"`
	DeskNumber  string `gorm:"size:16" json:"deskNumber,omitempty"`

	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoleForResource maps the REST sub-resource name to a role.
func RoleForResource(resource string) (string, bool) {
	switch resource {
	case "system-admins":
		return RoleSystemAdmin, true
	case "operational-managers":
		return RoleOperationalManager, true
	case "service-managers":
		return RoleServiceManager, true
	case "receptionists":
		return RoleReceptionist, true
	}
	return "", false
}

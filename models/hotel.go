package models

import (
	"time"

	"gorm.io/gorm"
)

type Hotel struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Address     string         `gorm:"type:text" json:"address"`
	Phone       string         `gorm:"size:50" json:"phone"`
	Email       string         `gorm:"size:150" json:"email"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

package models

import "time"

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

const (
	RequestPending    = "PENDING"
	RequestInProgress = "IN_PROGRESS"
	RequestCompleted  = "COMPLETED"
	RequestCancelled  = "CANCELLED"
)

type ServiceRequest struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReservationID *uint  `gorm:"index" json:"reservationId,omitempty"`
	RoomID        *uint  `gorm:"index" json:"roomId,omitempty"`
	Type          string `gorm:"size:64;not null" json:"type"`
	Description   string `gorm:"type:text" json:"description"`
	Status        string `gorm:"size:32;default:PENDING;index" json:"status"`
	Priority      string `gorm:"size:16;default:MEDIUM" json:"priority"`
	AssignedTo    string `gorm:"size:150" json:"assignedTo"`
	ChargeAmount  Money  `gorm:"default:0" json:"chargeAmount"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	TaskCleaning    = "CLEANING"
	TaskInspection  = "INSPECTION"
	TaskTurndown    = "TURNDOWN"
	TaskMaintenance = "MAINTENANCE"
)

const (
	TaskPending    = "PENDING"
	TaskInProgress = "IN_PROGRESS"
	TaskCompleted  = "COMPLETED"
	TaskVerified   = "VERIFIED"
)

type HousekeepingTask struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RoomID     uint   `gorm:"index;not null" json:"roomId"`
	Room       Room   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	TaskType   string `gorm:"size:32;not null" json:"taskType"`
	Status     string `gorm:"size:32;default:PENDING;index" json:"status"`
	Priority   string `gorm:"size:16;default:MEDIUM" json:"priority"`
	AssignedTo string `gorm:"size:150" json:"assignedTo"`
	Notes      string `gorm:"type:text" json:"notes"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	FraudExcessiveVoids    = "EXCESSIVE_VOIDS"
	FraudDuplicateIdentity = "DUPLICATE_IDENTITY"
	FraudHighValueCharge   = "HIGH_VALUE_CHARGE"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

const (
	AlertOpen          = "OPEN"
	AlertInvestigating = "INVESTIGATING"
	AlertResolved      = "RESOLVED"
	AlertDismissed     = "DISMISSED"
)

type FraudAlert struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReservationID *uint  `gorm:"index" json:"reservationId,omitempty"`
	GuestID       *uint  `gorm:"index" json:"guestId,omitempty"`
	FolioID       *uint  `gorm:"index" json:"folioId,omitempty"`
	AlertType     string `gorm:"size:32;not null;index" json:"alertType"`
	Severity      string `gorm:"size:16;not null" json:"severity"`
	Status        string `gorm:"size:16;default:OPEN;index" json:"status"`
	Description   string `gorm:"type:text" json:"description"`
	ResolvedBy    string `gorm:"size:150" json:"resolvedBy,omitempty"`

	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

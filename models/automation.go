package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	JobNoShow         = "NO_SHOW"
	JobNightAudit     = "NIGHT_AUDIT"
	JobDynamicPricing = "DYNAMIC_PRICING"
	JobOTASync        = "OTA_SYNC"
)

const (
	TriggerManual    = "MANUAL"
	TriggerScheduled = "SCHEDULED"
)

type AutomationConfig struct {
	ID uint `gorm:"primaryKey" json:"id"`

	NoShowEnabled    bool `json:"noShowEnabled"`
	NoShowGraceHours int  `json:"noShowGraceHours"`

	NightAuditEnabled  bool   `json:"nightAuditEnabled"`
	NightAuditSchedule string `gorm:"size:64" json:"nightAuditSchedule"`

	DynamicPricingEnabled  bool    `json:"dynamicPricingEnabled"`
	HighOccupancyThreshold float64 `json:"highOccupancyThreshold"`
	PriceIncreasePercent   float64 `json:"priceIncreasePercent"`
	LowOccupancyThreshold  float64 `json:"lowOccupancyThreshold"`
	PriceDecreasePercent   float64 `json:"priceDecreasePercent"`

	OTASyncEnabled bool `json:"otaSyncEnabled"`

	FraudVoidThreshold    int   `json:"fraudVoidThreshold"`
	FraudHighChargeAmount Money `json:"fraudHighChargeAmount"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultAutomationConfig is seeded on first start.
func DefaultAutomationConfig() AutomationConfig {
	return AutomationConfig{
		NoShowEnabled:          true,
		NoShowGraceHours:       18,
		NightAuditEnabled:      true,
		NightAuditSchedule:     "0 0 2 * * *",
		HighOccupancyThreshold: 80,
		PriceIncreasePercent:   10,
		LowOccupancyThreshold:  30,
		PriceDecreasePercent:   10,
		FraudVoidThreshold:     3,
		FraudHighChargeAmount:  NewMoney(5000),
	}
}

type AutomationRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Job        string         `gorm:"size:32;index" json:"job"`
	Trigger    string         `gorm:"size:16" json:"trigger"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
	Affected   int            `json:"affected"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
}

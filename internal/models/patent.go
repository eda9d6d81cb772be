// internal/models/patent.go
package models

import (
	"time"
)

type Patent struct {
	BaseModel
	OwnerID               PrincipalID     `json:"owner_id" gorm:"size:128;not null;index"`
	RoyaltyRate           CiphertextField `json:"royalty_rate" gorm:"embedded;embeddedPrefix:royalty_rate_"`
	MinLicenseFee         CiphertextField `json:"min_license_fee" gorm:"embedded;embeddedPrefix:min_license_fee_"`
	ExclusivityPeriodDays CiphertextField `json:"exclusivity_period_days" gorm:"embedded;embeddedPrefix:exclusivity_days_"`
	RegisteredAt          time.Time       `json:"registered_at" gorm:"not null"`
	ExpiresAt             time.Time       `json:"expires_at" gorm:"not null"`
	Status                PatentStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	IsConfidential        bool            `json:"is_confidential" gorm:"default:false"`
	ReferenceHash         string          `json:"reference_hash" gorm:"size:256"`
	TerritoryCode         uint8           `json:"territory_code"`
}

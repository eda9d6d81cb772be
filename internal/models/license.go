// internal/models/license.go
package models

import (
	"time"
)

// AllTerritories is the territory mask given to licenses won at auction.
const AllTerritories uint64 = 0xFF

type License struct {
	BaseModel
	PatentID      uint64          `json:"patent_id" gorm:"not null;index"`
	LicenseeID    PrincipalID     `json:"licensee_id" gorm:"size:128;not null;index"`
	LicensorID    PrincipalID     `json:"licensor_id" gorm:"size:128;not null;index"`
	Fee           CiphertextField `json:"fee" gorm:"embedded;embeddedPrefix:fee_"`
	RoyaltyRate   CiphertextField `json:"royalty_rate" gorm:"embedded;embeddedPrefix:royalty_rate_"`
	RevenueCap    CiphertextField `json:"revenue_cap" gorm:"embedded;embeddedPrefix:revenue_cap_"`
	TerritoryMask CiphertextField `json:"territory_mask" gorm:"embedded;embeddedPrefix:territory_mask_"`
	StartedAt     *time.Time      `json:"started_at"`
	EndsAt        *time.Time      `json:"ends_at"`
	Status        LicenseStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	IsExclusive   bool            `json:"is_exclusive" gorm:"default:false"`
	AutoRenewal   bool            `json:"auto_renewal" gorm:"default:false"`
}

// internal/models/royalty.go
package models

import (
	"time"

	"github.com/javajoker/imi-ledger/internal/gateway"
)

type RoyaltyPayment struct {
	BaseModel
	LicenseID         uint64            `json:"license_id" gorm:"not null;uniqueIndex:idx_royalty_license_index,priority:1"`
	Index             uint32            `json:"index" gorm:"column:idx;not null;uniqueIndex:idx_royalty_license_index,priority:2"`
	PaidAmount        CiphertextField   `json:"paid_amount" gorm:"embedded;embeddedPrefix:paid_amount_"`
	ReportedRevenue   CiphertextField   `json:"reported_revenue" gorm:"embedded;embeddedPrefix:reported_revenue_"`
	PaidAt            time.Time         `json:"paid_at"`
	ReportingPeriod   string            `json:"reporting_period" gorm:"size:64"`
	VerificationState VerificationState `json:"verification_state" gorm:"type:varchar(20);default:'unverified';index"`
	VerifiedAt        *time.Time        `json:"verified_at"`
}

// PendingVerification links a gateway request token to the payment it verifies.
type PendingVerification struct {
	Token        gateway.RequestToken `json:"token" gorm:"primaryKey;size:64"`
	LicenseID    uint64               `json:"license_id" gorm:"not null;index"`
	PaymentIndex uint32               `json:"payment_index" gorm:"not null"`
	RequestedBy  PrincipalID          `json:"requested_by" gorm:"size:128;not null"`
	RequestedAt  time.Time            `json:"requested_at"`
}

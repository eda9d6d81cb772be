// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Base model with common fields. Ids are assigned monotonically by the database.
type BaseModel struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrincipalID identifies a party that can act on the ledger or receive disclosure.
type PrincipalID string

// LedgerPrincipal is the ledger itself. It is granted disclosure on every
// ciphertext the ledger creates and is never accepted as an external caller.
const LedgerPrincipal PrincipalID = "ledger"

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type PatentStatus string

const (
	PatentStatusActive    PatentStatus = "active"
	PatentStatusSuspended PatentStatus = "suspended"
	PatentStatusExpired   PatentStatus = "expired"
)

func (s PatentStatus) IsValid() bool {
	switch s {
	case PatentStatusActive, PatentStatusSuspended, PatentStatusExpired:
		return true
	}
	return false
}

type LicenseStatus string

const (
	LicenseStatusPending   LicenseStatus = "pending"
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusExpired   LicenseStatus = "expired"
	LicenseStatusRevoked   LicenseStatus = "revoked"
)

func (s LicenseStatus) IsValid() bool {
	switch s {
	case LicenseStatusPending, LicenseStatusActive, LicenseStatusSuspended,
		LicenseStatusExpired, LicenseStatusRevoked:
		return true
	}
	return false
}

type VerificationState string

const (
	VerificationStateUnverified VerificationState = "unverified"
	VerificationStateVerified   VerificationState = "verified"
	VerificationStateDisputed   VerificationState = "disputed"
)

type EventKind string

const (
	EventPatentRegistered            EventKind = "PatentRegistered"
	EventPatentStatusChanged         EventKind = "PatentStatusChanged"
	EventLicenseRequested            EventKind = "LicenseRequested"
	EventLicenseApproved             EventKind = "LicenseApproved"
	EventLicenseStatusChanged        EventKind = "LicenseStatusChanged"
	EventBidSubmitted                EventKind = "BidSubmitted"
	EventAuctionFinalized            EventKind = "AuctionFinalized"
	EventRoyaltyPaid                 EventKind = "RoyaltyPaid"
	EventRoyaltyVerificationResolved EventKind = "RoyaltyVerificationResolved"
)

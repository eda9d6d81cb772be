// internal/models/auction.go
package models

import (
	"time"
)

// Auction is the sealed-bid window of a patent. Each Open starts a new round.
type Auction struct {
	BaseModel
	PatentID    uint64       `json:"patent_id" gorm:"not null;uniqueIndex"`
	Round       uint32       `json:"round" gorm:"not null;default:0"`
	BiddingOpen bool         `json:"bidding_open" gorm:"default:false"`
	Deadline    time.Time    `json:"deadline"`
	FinalizedAt *time.Time   `json:"finalized_at"`
	WinnerID    *PrincipalID `json:"winner_id,omitempty" gorm:"size:128"`
	LicenseID   *uint64      `json:"license_id,omitempty"`
}

// Bid is the live sealed bid of one bidder in one round. Seq keeps the
// first-submission order and is not changed by resubmission.
type Bid struct {
	BaseModel
	PatentID    uint64          `json:"patent_id" gorm:"not null;uniqueIndex:idx_bids_round_bidder,priority:1"`
	Round       uint32          `json:"round" gorm:"not null;uniqueIndex:idx_bids_round_bidder,priority:2"`
	BidderID    PrincipalID     `json:"bidder_id" gorm:"size:128;not null;uniqueIndex:idx_bids_round_bidder,priority:3"`
	Amount      CiphertextField `json:"amount" gorm:"embedded;embeddedPrefix:amount_"`
	Seq         uint32          `json:"seq" gorm:"not null"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

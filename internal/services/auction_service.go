// internal/services/auction_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/models"
)

// AuctionService runs sealed-bid auctions for an exclusive license. Bid
// amounts are compared inside the gateway; the ledger only learns the index
// of the winning bid.
type AuctionService struct {
	exec    *Executor
	gateway gateway.Gateway
	perms   *PermissionService
	events  *EventService
}

type OpenAuctionRequest struct {
	DurationHours uint32 `json:"duration_hours" validate:"min=1,max=168"`
}

type SubmitBidRequest struct {
	Amount uint64 `json:"amount" validate:"min=1"`
}

// AuctionView is the public state of a patent's auction round.
type AuctionView struct {
	Auction *models.Auction      `json:"auction"`
	IsOpen  bool                 `json:"is_open"`
	Bidders []models.PrincipalID `json:"bidders"`
}

const auctionLicenseDays = 365

func NewAuctionService(exec *Executor, gw gateway.Gateway, perms *PermissionService, events *EventService) *AuctionService {
	return &AuctionService{
		exec:    exec,
		gateway: gw,
		perms:   perms,
		events:  events,
	}
}

// Open starts a new bidding round. Bids from earlier rounds are discarded.
func (s *AuctionService) Open(ctx context.Context, caller models.PrincipalID, patentID uint64, req *OpenAuctionRequest) (*models.Auction, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var auction *models.Auction
	err := s.exec.Run(ctx, "open_auction", func(tx *Tx) error {
		patent, err := loadPatent(tx.DB, patentID)
		if err != nil {
			return err
		}
		if patent.OwnerID != caller {
			return newError(KindUnauthorized, "only the patent owner can open an auction")
		}

		auction, err = findAuction(tx.DB, patentID)
		if err != nil {
			return err
		}
		if auction == nil {
			auction = &models.Auction{PatentID: patentID}
		} else if auction.BiddingOpen {
			return newError(KindAuctionAlreadyOpen, fmt.Sprintf("auction for patent %d is already open", patentID))
		}

		if err := tx.Where("patent_id = ?", patentID).Delete(&models.Bid{}).Error; err != nil {
			return internalError("failed to clear previous bids", err)
		}

		auction.Round++
		auction.BiddingOpen = true
		auction.Deadline = s.exec.Now().Add(time.Duration(req.DurationHours) * time.Hour)
		auction.FinalizedAt = nil
		auction.WinnerID = nil
		auction.LicenseID = nil

		if err := tx.Save(auction).Error; err != nil {
			return internalError("failed to open auction", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return auction, nil
}

// SubmitBid seals the bid amount and replaces the caller's previous bid in
// the current round. The first submission fixes the bidder's position.
func (s *AuctionService) SubmitBid(ctx context.Context, caller models.PrincipalID, patentID uint64, req *SubmitBidRequest) (*models.Bid, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var bid models.Bid
	err := s.exec.Run(ctx, "submit_bid", func(tx *Tx) error {
		patent, err := loadPatent(tx.DB, patentID)
		if err != nil {
			return err
		}
		auction, err := findAuction(tx.DB, patentID)
		if err != nil {
			return err
		}
		now := s.exec.Now()
		if auction == nil || !auction.BiddingOpen || !now.Before(auction.Deadline) {
			return newError(KindAuctionClosed, fmt.Sprintf("auction for patent %d is not accepting bids", patentID))
		}

		amount, err := encryptField(ctx, s.gateway, req.Amount, gateway.WidthUint64)
		if err != nil {
			return err
		}

		err = tx.Where("patent_id = ? AND round = ? AND bidder_id = ?", patentID, auction.Round, caller).First(&bid).Error
		switch {
		case err == nil:
			bid.Amount = amount
			bid.SubmittedAt = now
			if err := tx.Save(&bid).Error; err != nil {
				return internalError("failed to replace bid", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&models.Bid{}).Where("patent_id = ? AND round = ?", patentID, auction.Round).Count(&count).Error; err != nil {
				return internalError("failed to count bids", err)
			}
			bid = models.Bid{
				PatentID:    patentID,
				Round:       auction.Round,
				BidderID:    caller,
				Amount:      amount,
				Seq:         uint32(count),
				SubmittedAt: now,
			}
			if err := tx.Create(&bid).Error; err != nil {
				return internalError("failed to record bid", err)
			}
		default:
			return internalError("database error", err)
		}

		if err := s.perms.grant(tx.DB, amount.Handle, caller, patent.OwnerID, models.LedgerPrincipal); err != nil {
			return err
		}

		return s.events.emit(tx, models.EventBidSubmitted, SubjectAuction, auction.ID, caller, map[string]interface{}{
			"patent_id": patentID,
			"round":     auction.Round,
			"bidder_id": caller,
			"seq":       bid.Seq,
		})
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// Finalize closes bidding and, when there are bids, issues an active
// exclusive license to the highest bidder. The license is nil when nobody bid.
func (s *AuctionService) Finalize(ctx context.Context, caller models.PrincipalID, patentID uint64) (*models.Auction, *models.License, error) {
	if err := checkCaller(caller); err != nil {
		return nil, nil, err
	}

	var auction *models.Auction
	var license *models.License
	err := s.exec.Run(ctx, "finalize_auction", func(tx *Tx) error {
		patent, err := loadPatent(tx.DB, patentID)
		if err != nil {
			return err
		}
		if patent.OwnerID != caller {
			return newError(KindUnauthorized, "only the patent owner can finalize an auction")
		}

		auction, err = findAuction(tx.DB, patentID)
		if err != nil {
			return err
		}
		if auction == nil || !auction.BiddingOpen {
			return newError(KindAuctionStillOpen, fmt.Sprintf("auction for patent %d has no open round", patentID))
		}
		now := s.exec.Now()
		if now.Before(auction.Deadline) {
			return newError(KindAuctionStillOpen, fmt.Sprintf("auction for patent %d closes at %s", patentID, auction.Deadline.Format(time.RFC3339)))
		}

		auction.BiddingOpen = false
		auction.FinalizedAt = &now

		var bids []models.Bid
		if err := tx.Where("patent_id = ? AND round = ?", patentID, auction.Round).Order("seq ASC").Find(&bids).Error; err != nil {
			return internalError("failed to load bids", err)
		}
		if len(bids) == 0 {
			if err := tx.Save(auction).Error; err != nil {
				return internalError("failed to close auction", err)
			}
			return nil
		}

		handles := make([]gateway.Handle, len(bids))
		for i, b := range bids {
			handles[i] = b.Amount.Handle
		}
		if err := s.perms.require(tx.DB, models.LedgerPrincipal, append(handles, patent.RoyaltyRate.Handle)...); err != nil {
			return err
		}

		idx, err := s.gateway.CompareMax(ctx, handles)
		if err != nil {
			return internalError("gateway failed to compare bids", err)
		}
		if idx < 0 || idx >= len(bids) {
			return internalError(fmt.Sprintf("gateway returned winner index %d for %d bids", idx, len(bids)), nil)
		}
		winner := bids[idx]

		mask, err := encryptField(ctx, s.gateway, models.AllTerritories, gateway.WidthUint8)
		if err != nil {
			return err
		}
		revenueCap, err := encryptField(ctx, s.gateway, 0, gateway.WidthUint64)
		if err != nil {
			return err
		}

		endsAt := now.Add(auctionLicenseDays * 24 * time.Hour)
		license = &models.License{
			PatentID:      patent.ID,
			LicenseeID:    winner.BidderID,
			LicensorID:    patent.OwnerID,
			Fee:           winner.Amount,
			RoyaltyRate:   patent.RoyaltyRate,
			RevenueCap:    revenueCap,
			TerritoryMask: mask,
			StartedAt:     &now,
			EndsAt:        &endsAt,
			Status:        models.LicenseStatusActive,
			IsExclusive:   true,
		}
		if err := tx.Create(license).Error; err != nil {
			return internalError("failed to create license", err)
		}

		for _, h := range []gateway.Handle{license.RoyaltyRate.Handle, mask.Handle, revenueCap.Handle} {
			if err := s.perms.grant(tx.DB, h, license.LicenseeID, license.LicensorID, models.LedgerPrincipal); err != nil {
				return err
			}
		}

		winnerID := winner.BidderID
		auction.WinnerID = &winnerID
		auction.LicenseID = &license.ID
		if err := tx.Save(auction).Error; err != nil {
			return internalError("failed to finalize auction", err)
		}

		return s.events.emit(tx, models.EventAuctionFinalized, SubjectAuction, auction.ID, caller, map[string]interface{}{
			"patent_id":  patentID,
			"round":      auction.Round,
			"winner_id":  winnerID,
			"license_id": license.ID,
			"bidders":    len(bids),
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return auction, license, nil
}

// IsOpen reports whether the patent's auction accepts bids right now.
func (s *AuctionService) IsOpen(ctx context.Context, patentID uint64) (bool, error) {
	view, err := s.Get(ctx, patentID)
	if err != nil {
		return false, err
	}
	return view.IsOpen, nil
}

func (s *AuctionService) Get(ctx context.Context, patentID uint64) (*AuctionView, error) {
	view := &AuctionView{Bidders: []models.PrincipalID{}}
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		if _, err := loadPatent(db, patentID); err != nil {
			return err
		}
		auction, err := findAuction(db, patentID)
		if err != nil || auction == nil {
			return err
		}
		view.Auction = auction
		view.IsOpen = auction.BiddingOpen && s.exec.Now().Before(auction.Deadline)

		var bids []models.Bid
		if err := db.Where("patent_id = ? AND round = ?", patentID, auction.Round).Order("seq ASC").Find(&bids).Error; err != nil {
			return internalError("failed to load bids", err)
		}
		for _, b := range bids {
			view.Bidders = append(view.Bidders, b.BidderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func findAuction(db *gorm.DB, patentID uint64) (*models.Auction, error) {
	var auction models.Auction
	err := db.Where("patent_id = ?", patentID).First(&auction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("database error", err)
	}
	return &auction, nil
}

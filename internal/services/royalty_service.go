// internal/services/royalty_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/metrics"
	"github.com/javajoker/imi-ledger/internal/models"
)

// RoyaltyService records royalty payments and reconciles them against the
// license rate through asynchronous gateway decryption.
type RoyaltyService struct {
	exec    *Executor
	gateway gateway.Gateway
	perms   *PermissionService
	events  *EventService
	payer   Payer
	metrics *metrics.LedgerMetrics
}

type PayRoyaltyRequest struct {
	ReportedRevenue   uint64 `json:"reported_revenue"`
	ReportingPeriod   string `json:"reporting_period" validate:"max=64"`
	TransferredAmount uint64 `json:"transferred_amount"`
}

// Verification tolerance: a payment verifies when it covers at least 95% of
// the expected royalty.
var (
	basisPoints        = decimal.NewFromInt(10000)
	toleranceNumerator = decimal.NewFromInt(95)
	percent            = decimal.NewFromInt(100)
)

const verificationArity = 3

func NewRoyaltyService(exec *Executor, gw gateway.Gateway, perms *PermissionService, events *EventService, payer Payer, m *metrics.LedgerMetrics) *RoyaltyService {
	if payer == nil {
		payer = LogPayer{}
	}
	return &RoyaltyService{
		exec:    exec,
		gateway: gw,
		perms:   perms,
		events:  events,
		payer:   payer,
		metrics: m,
	}
}

// Pay appends an unverified payment and transfers the value to the
// licensor. A failed transfer leaves no trace on the ledger.
func (s *RoyaltyService) Pay(ctx context.Context, caller models.PrincipalID, licenseID uint64, req *PayRoyaltyRequest) (*models.RoyaltyPayment, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var payment models.RoyaltyPayment
	err := s.exec.Run(ctx, "pay_royalties", func(tx *Tx) error {
		license, err := loadLicense(tx.DB, licenseID)
		if err != nil {
			return err
		}
		if license.LicenseeID != caller {
			return newError(KindUnauthorized, "only the licensee can pay royalties")
		}
		if license.Status != models.LicenseStatusActive {
			return newError(KindInvalidState, fmt.Sprintf("license %d is %s, not active", license.ID, license.Status))
		}

		revenue, err := encryptField(ctx, s.gateway, req.ReportedRevenue, gateway.WidthUint64)
		if err != nil {
			return err
		}
		paid, err := encryptField(ctx, s.gateway, req.TransferredAmount, gateway.WidthUint64)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.RoyaltyPayment{}).Where("license_id = ?", license.ID).Count(&count).Error; err != nil {
			return internalError("failed to count payments", err)
		}

		payment = models.RoyaltyPayment{
			LicenseID:         license.ID,
			Index:             uint32(count),
			PaidAmount:        paid,
			ReportedRevenue:   revenue,
			PaidAt:            s.exec.Now(),
			ReportingPeriod:   req.ReportingPeriod,
			VerificationState: models.VerificationStateUnverified,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return internalError("failed to record payment", err)
		}

		for _, h := range []gateway.Handle{revenue.Handle, paid.Handle} {
			if err := s.perms.grant(tx.DB, h, license.LicensorID, license.LicenseeID, models.LedgerPrincipal); err != nil {
				return err
			}
		}

		if err := s.events.emit(tx, models.EventRoyaltyPaid, SubjectRoyalty, payment.ID, caller, map[string]interface{}{
			"license_id":       license.ID,
			"index":            payment.Index,
			"reporting_period": payment.ReportingPeriod,
		}); err != nil {
			return err
		}

		// Transfer goes last. The reference doubles as the provider's
		// idempotency key, so a retry after a failed commit reuses it.
		reference := fmt.Sprintf("license-%d-royalty-%d", license.ID, payment.Index)
		if err := s.payer.Transfer(ctx, license.LicenseeID, license.LicensorID, req.TransferredAmount, reference); err != nil {
			return internalError("royalty transfer failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// RequestVerification asks the gateway to decrypt the payment inputs and
// returns immediately. The result arrives through OnVerificationComplete.
func (s *RoyaltyService) RequestVerification(ctx context.Context, caller models.PrincipalID, licenseID uint64, index uint32) (gateway.RequestToken, error) {
	if err := checkCaller(caller); err != nil {
		return "", err
	}

	var token gateway.RequestToken
	err := s.exec.Run(ctx, "request_royalty_verification", func(tx *Tx) error {
		license, err := loadLicense(tx.DB, licenseID)
		if err != nil {
			return err
		}
		if license.LicensorID != caller {
			return newError(KindUnauthorized, "only the licensor can request verification")
		}

		payment, err := loadPayment(tx.DB, licenseID, index)
		if err != nil {
			return err
		}
		if payment.VerificationState != models.VerificationStateUnverified {
			return newError(KindAlreadyVerified, fmt.Sprintf("payment %d of license %d is %s", index, licenseID, payment.VerificationState))
		}

		handles := []gateway.Handle{
			payment.ReportedRevenue.Handle,
			license.RoyaltyRate.Handle,
			payment.PaidAmount.Handle,
		}
		if err := s.perms.require(tx.DB, models.LedgerPrincipal, handles...); err != nil {
			return err
		}

		token, err = s.gateway.RequestDecrypt(ctx, handles)
		if err != nil {
			return internalError("gateway rejected decryption request", err)
		}

		pending := &models.PendingVerification{
			Token:        token,
			LicenseID:    licenseID,
			PaymentIndex: index,
			RequestedBy:  caller,
			RequestedAt:  s.exec.Now(),
		}
		if err := tx.Create(pending).Error; err != nil {
			return internalError("failed to record pending verification", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// OnVerificationComplete is the gateway callback. Plaintexts are
// [reported revenue, royalty rate, transferred amount]. Stale, unmatched or
// malformed results are logged and dropped.
func (s *RoyaltyService) OnVerificationComplete(ctx context.Context, token gateway.RequestToken, plaintexts []uint64) {
	var dropReason string
	var state models.VerificationState
	var pending models.PendingVerification

	err := s.exec.Run(ctx, "verification_callback", func(tx *Tx) error {
		err := tx.Where("token = ?", token).First(&pending).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			dropReason = "unmatched_token"
			return nil
		}
		if err != nil {
			return internalError("database error", err)
		}

		// the token is consumed whatever the outcome
		if err := tx.Delete(&pending).Error; err != nil {
			return internalError("failed to consume pending verification", err)
		}

		if len(plaintexts) != verificationArity {
			dropReason = "wrong_arity"
			return nil
		}
		license, err := loadLicense(tx.DB, pending.LicenseID)
		if err != nil {
			if KindOf(err) == KindNotFound {
				dropReason = "missing_license"
				return nil
			}
			return err
		}
		payment, err := loadPayment(tx.DB, license.ID, pending.PaymentIndex)
		if err != nil {
			if KindOf(err) == KindNotFound {
				dropReason = "missing_payment"
				return nil
			}
			return err
		}
		if payment.VerificationState != models.VerificationStateUnverified {
			dropReason = "already_resolved"
			return nil
		}

		state = verificationOutcome(plaintexts[0], plaintexts[1], plaintexts[2])
		now := s.exec.Now()
		if err := tx.Model(payment).Updates(map[string]interface{}{
			"verification_state": state,
			"verified_at":        now,
		}).Error; err != nil {
			return internalError("failed to resolve payment", err)
		}

		return s.events.emit(tx, models.EventRoyaltyVerificationResolved, SubjectRoyalty, payment.ID, models.LedgerPrincipal, map[string]interface{}{
			"license_id": license.ID,
			"index":      payment.Index,
			"state":      state,
		})
	})

	fields := logrus.Fields{
		"token":         token,
		"license_id":    pending.LicenseID,
		"payment_index": pending.PaymentIndex,
	}
	switch {
	case err != nil:
		s.metrics.IncDroppedCallback("error")
		logrus.WithError(err).WithFields(fields).Error("Failed to apply verification result")
	case dropReason != "":
		s.metrics.IncDroppedCallback(dropReason)
		logrus.WithFields(fields).WithField("reason", dropReason).Warn("Dropped verification callback")
	default:
		s.metrics.IncVerification(string(state))
		logrus.WithFields(fields).WithField("state", state).Info("Royalty verification resolved")
	}
}

// ListPayments returns the payments of a license in index order. Only the
// licensee and licensor may list them.
func (s *RoyaltyService) ListPayments(ctx context.Context, caller models.PrincipalID, licenseID uint64) ([]models.RoyaltyPayment, error) {
	var payments []models.RoyaltyPayment
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		license, err := loadLicense(db, licenseID)
		if err != nil {
			return err
		}
		if caller != license.LicenseeID && caller != license.LicensorID {
			return newError(KindUnauthorized, "only license parties can list payments")
		}
		if err := db.Where("license_id = ?", licenseID).Order("idx ASC").Find(&payments).Error; err != nil {
			return internalError("failed to list payments", err)
		}
		return nil
	})
	return payments, err
}

// verificationOutcome applies expected = revenue*rate/10000 (integer
// division) and accepts transferred >= 95% of expected.
func verificationOutcome(revenue, rateBp, transferred uint64) models.VerificationState {
	expected := decimalFromUint64(revenue).Mul(decimalFromUint64(rateBp)).Div(basisPoints).Floor()
	if decimalFromUint64(transferred).Mul(percent).Cmp(expected.Mul(toleranceNumerator)) >= 0 {
		return models.VerificationStateVerified
	}
	return models.VerificationStateDisputed
}

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func loadPayment(db *gorm.DB, licenseID uint64, index uint32) (*models.RoyaltyPayment, error) {
	var payment models.RoyaltyPayment
	err := db.Where("license_id = ? AND idx = ?", licenseID, index).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("payment %d of license %d not found", index, licenseID))
		}
		return nil, internalError("database error", err)
	}
	return &payment, nil
}

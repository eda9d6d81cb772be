// internal/services/ledger.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/metrics"
	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/utils"
)

// Ledger wires the components around one executor and registers the
// royalty callback on the gateway.
type Ledger struct {
	Executor    *Executor
	Permissions *PermissionService
	Events      *EventService
	Patents     *PatentService
	Licenses    *LicenseService
	Auctions    *AuctionService
	Royalties   *RoyaltyService
	Disclosures *DisclosureService
}

type LedgerOptions struct {
	StrictTransitions bool
	Payer             Payer
	Publisher         FactPublisher
	Metrics           *metrics.LedgerMetrics
}

func NewLedger(db *gorm.DB, gw gateway.Gateway, opts LedgerOptions) *Ledger {
	exec := NewExecutor(db, opts.Metrics)
	perms := NewPermissionService(exec)
	events := NewEventService(exec, opts.Publisher, opts.Metrics)

	l := &Ledger{
		Executor:    exec,
		Permissions: perms,
		Events:      events,
		Patents:     NewPatentService(exec, gw, perms, events, opts.StrictTransitions),
		Licenses:    NewLicenseService(exec, gw, perms, events, opts.StrictTransitions),
		Auctions:    NewAuctionService(exec, gw, perms, events),
		Royalties:   NewRoyaltyService(exec, gw, perms, events, opts.Payer, opts.Metrics),
		Disclosures: NewDisclosureService(exec, gw, perms),
	}
	gw.OnComplete(l.Royalties.OnVerificationComplete)
	return l
}

// checkCaller rejects missing principals and the ledger's own principal.
func checkCaller(caller models.PrincipalID) error {
	if caller == "" {
		return newError(KindUnauthorized, "caller identity is required")
	}
	if caller == models.LedgerPrincipal {
		return newError(KindUnauthorized, "reserved principal cannot call the ledger")
	}
	return nil
}

func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return wrapError(KindInvalidParameter, "validation failed", err)
	}
	return nil
}

func encryptField(ctx context.Context, gw gateway.Gateway, value uint64, width gateway.BitWidth) (models.CiphertextField, error) {
	handle, err := gw.Encrypt(ctx, value, width)
	if err != nil {
		if errors.Is(err, gateway.ErrWidthOverflow) || errors.Is(err, gateway.ErrInvalidWidth) {
			return models.CiphertextField{}, wrapError(KindInvalidParameter, fmt.Sprintf("value does not fit %d bits", width), err)
		}
		return models.CiphertextField{}, internalError("gateway failed to encrypt", err)
	}
	return models.NewCiphertextField(handle, width), nil
}

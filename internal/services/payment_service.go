// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/transfer"

	"github.com/javajoker/imi-ledger/internal/config"
	"github.com/javajoker/imi-ledger/internal/models"
)

// Payer moves the value accompanying a royalty payment from licensee to
// licensor. A failed transfer aborts the royalty payment.
type Payer interface {
	Transfer(ctx context.Context, from, to models.PrincipalID, amount uint64, reference string) error
}

// NewPayer returns the payer selected by configuration.
func NewPayer(cfg config.PaymentConfig) (Payer, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripePayer(cfg), nil
	case "log", "":
		return LogPayer{}, nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}

// StripePayer creates a Stripe Connect transfer to the licensor's connected
// account. The licensor principal id is the connected account id.
type StripePayer struct {
	currency string
}

func NewStripePayer(cfg config.PaymentConfig) *StripePayer {
	// Initialize Stripe
	stripe.Key = cfg.StripeSecretKey

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &StripePayer{currency: currency}
}

func (p *StripePayer) Transfer(ctx context.Context, from, to models.PrincipalID, amount uint64, reference string) error {
	if amount > math.MaxInt64 {
		return errors.New("transfer amount exceeds provider range")
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(int64(amount)),
		Currency:      stripe.String(p.currency),
		Destination:   stripe.String(string(to)),
		TransferGroup: stripe.String(reference),
	}
	params.Context = ctx
	params.SetIdempotencyKey(reference)
	params.AddMetadata("reference", reference)
	params.AddMetadata("payer", string(from))

	t, err := transfer.New(params)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"transfer_id": t.ID,
		"reference":   reference,
		"to":          to,
	}).Info("Royalty transfer created")
	return nil
}

// LogPayer records the transfer in the log only.
type LogPayer struct{}

func (LogPayer) Transfer(ctx context.Context, from, to models.PrincipalID, amount uint64, reference string) error {
	logrus.WithFields(logrus.Fields{
		"from":      from,
		"to":        to,
		"reference": reference,
	}).Info("Royalty transfer recorded")
	return nil
}

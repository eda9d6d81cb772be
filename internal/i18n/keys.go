// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthReserved     = "auth.reserved_principal"
	KeyAccessDenied     = "auth.access_denied"
	KeyRateLimited      = "request.rate_limited"

	// Patents
	KeyPatentRegistered    = "patent.registered"
	KeyPatentStatusUpdated = "patent.status_updated"
	KeyPatentNotFound      = "patent.not_found"
	KeyPatentNotActive     = "patent.not_active"

	// Licenses
	KeyLicenseRequested     = "license.requested"
	KeyLicenseApproved      = "license.approved"
	KeyLicenseStatusUpdated = "license.status_updated"
	KeyLicenseNotFound      = "license.not_found"

	// Auctions
	KeyAuctionOpened      = "auction.opened"
	KeyAuctionBidAccepted = "auction.bid_accepted"
	KeyAuctionFinalized   = "auction.finalized"
	KeyAuctionNoBids      = "auction.no_bids"
	KeyAuctionClosed      = "auction.closed"
	KeyAuctionStillOpen   = "auction.still_open"
	KeyAuctionAlreadyOpen = "auction.already_open"

	// Royalties
	KeyRoyaltyPaid                  = "royalty.paid"
	KeyRoyaltyVerificationRequested = "royalty.verification_requested"
	KeyRoyaltyAlreadyVerified       = "royalty.already_verified"

	// Disclosure
	KeyDisclosureDenied = "disclosure.denied"

	// Ledger errors
	KeyErrorUnauthorized = "error.unauthorized"
	KeyErrorInvalidState = "error.invalid_state"
	KeyErrorNotFound     = "error.not_found"
	KeyErrorInternal     = "error.internal"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)

// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures. Handlers map kinds to HTTP status.
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindInvalidParameter   ErrorKind = "INVALID_PARAMETER"
	KindInvalidState       ErrorKind = "INVALID_STATE"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindPatentNotActive    ErrorKind = "PATENT_NOT_ACTIVE"
	KindAuctionClosed      ErrorKind = "AUCTION_CLOSED"
	KindAuctionStillOpen   ErrorKind = "AUCTION_STILL_OPEN"
	KindAuctionAlreadyOpen ErrorKind = "AUCTION_ALREADY_OPEN"
	KindAlreadyVerified    ErrorKind = "ALREADY_VERIFIED"
	KindInternal           ErrorKind = "INTERNAL"
)

type LedgerError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is matches any LedgerError of the same kind, so callers can use the
// sentinels below with errors.Is.
func (e *LedgerError) Is(target error) bool {
	var t *LedgerError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthorized       = &LedgerError{Kind: KindUnauthorized, Message: "caller is not authorized"}
	ErrInvalidParameter   = &LedgerError{Kind: KindInvalidParameter, Message: "invalid parameter"}
	ErrInvalidState       = &LedgerError{Kind: KindInvalidState, Message: "invalid state"}
	ErrNotFound           = &LedgerError{Kind: KindNotFound, Message: "not found"}
	ErrPatentNotActive    = &LedgerError{Kind: KindPatentNotActive, Message: "patent is not active"}
	ErrAuctionClosed      = &LedgerError{Kind: KindAuctionClosed, Message: "auction is closed"}
	ErrAuctionStillOpen   = &LedgerError{Kind: KindAuctionStillOpen, Message: "auction is still open"}
	ErrAuctionAlreadyOpen = &LedgerError{Kind: KindAuctionAlreadyOpen, Message: "auction is already open"}
	ErrAlreadyVerified    = &LedgerError{Kind: KindAlreadyVerified, Message: "payment already verified"}
	ErrInternal           = &LedgerError{Kind: KindInternal, Message: "internal error"}
)

func newError(kind ErrorKind, message string) error {
	return &LedgerError{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) error {
	return &LedgerError{Kind: kind, Message: message, Err: err}
}

func internalError(message string, err error) error {
	return wrapError(KindInternal, message, err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

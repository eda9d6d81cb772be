// internal/gateway/gateway.go

// Package gateway defines the encryption gateway the ledger consumes and an
// in-process reference implementation of it.
//
// The ledger never sees plaintext for confidential terms. It holds opaque
// handles, asks the gateway to decrypt on its behalf through an asynchronous
// request/callback protocol, and delegates sealed-bid comparison entirely to
// the gateway.
package gateway

import (
	"context"
	"errors"
)

// Handle is an opaque reference to an encrypted value.
type Handle string

// RequestToken identifies one asynchronous decryption request.
type RequestToken string

// BitWidth is the plaintext domain of a ciphertext.
type BitWidth uint8

const (
	WidthBool   BitWidth = 1
	WidthUint8  BitWidth = 8
	WidthUint32 BitWidth = 32
	WidthUint64 BitWidth = 64
)

func (w BitWidth) Valid() bool {
	switch w {
	case WidthBool, WidthUint8, WidthUint32, WidthUint64:
		return true
	}
	return false
}

// Fits reports whether v is representable in w.
func (w BitWidth) Fits(v uint64) bool {
	switch w {
	case WidthBool:
		return v <= 1
	case WidthUint8:
		return v <= 0xFF
	case WidthUint32:
		return v <= 0xFFFFFFFF
	case WidthUint64:
		return true
	}
	return false
}

// CompletionFunc receives the plaintexts of a finished decryption request,
// in the same order as the handles passed to RequestDecrypt.
type CompletionFunc func(ctx context.Context, token RequestToken, plaintexts []uint64)

// Gateway is the narrow surface of the encryption engine used by the ledger.
type Gateway interface {
	// Encrypt seals a plaintext of the given width and returns its handle.
	Encrypt(ctx context.Context, value uint64, width BitWidth) (Handle, error)

	// Decrypt is the user decryption path. Callers must have checked the
	// disclosure grant for the requesting principal before calling it.
	Decrypt(ctx context.Context, handle Handle) (uint64, error)

	// RequestDecrypt queues a decryption of handles and returns immediately.
	// The registered CompletionFunc fires at most once per token, later, on
	// a goroutine owned by the gateway.
	RequestDecrypt(ctx context.Context, handles []Handle) (RequestToken, error)

	// CompareMax returns the index of the largest plaintext among handles.
	// Ties resolve to the lowest index. Plaintexts never leave the gateway.
	CompareMax(ctx context.Context, handles []Handle) (int, error)

	// OnComplete registers the receiver for RequestDecrypt results.
	OnComplete(fn CompletionFunc)
}

var (
	ErrUnknownHandle  = errors.New("unknown ciphertext handle")
	ErrInvalidWidth   = errors.New("invalid bit width")
	ErrWidthOverflow  = errors.New("plaintext does not fit bit width")
	ErrNoHandles      = errors.New("at least one handle is required")
	ErrCorruptedBlob  = errors.New("ciphertext failed authentication")
	ErrInvalidKeySize = errors.New("gateway key must be 32 bytes")
)

// internal/models/ciphertext.go
package models

import (
	"github.com/javajoker/imi-ledger/internal/gateway"
)

// CiphertextField embeds a gateway handle in an entity. It never carries
// plaintext; disclosure goes through the permission registry and the gateway.
type CiphertextField struct {
	Handle gateway.Handle   `json:"handle" gorm:"size:64"`
	Width  gateway.BitWidth `json:"bit_width"`
}

func NewCiphertextField(handle gateway.Handle, width gateway.BitWidth) CiphertextField {
	return CiphertextField{Handle: handle, Width: width}
}

func (f CiphertextField) IsZero() bool {
	return f.Handle == ""
}

// internal/models/permission.go
package models

import (
	"time"

	"github.com/javajoker/imi-ledger/internal/gateway"
)

// PermissionGrant authorizes one principal to learn the plaintext behind one handle.
type PermissionGrant struct {
	ID          uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Handle      gateway.Handle `json:"handle" gorm:"size:64;not null;uniqueIndex:idx_grants_handle_principal,priority:1"`
	PrincipalID PrincipalID    `json:"principal_id" gorm:"size:128;not null;uniqueIndex:idx_grants_handle_principal,priority:2;index"`
	GrantedAt   time.Time      `json:"granted_at"`
}

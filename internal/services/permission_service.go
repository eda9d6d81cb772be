// internal/services/permission_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/models"
)

// PermissionService is the disclosure registry: the set of (handle,
// principal) pairs allowed to learn a plaintext. Grants are additive and
// never revoked.
type PermissionService struct {
	exec *Executor
}

func NewPermissionService(exec *Executor) *PermissionService {
	return &PermissionService{exec: exec}
}

// grant records (handle, p) for every principal. Duplicates are no-ops.
func (s *PermissionService) grant(db *gorm.DB, handle gateway.Handle, principals ...models.PrincipalID) error {
	if handle == "" {
		return internalError("grant on empty handle", nil)
	}

	now := s.exec.Now()
	seen := make(map[models.PrincipalID]bool, len(principals))
	for _, p := range principals {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true

		grant := &models.PermissionGrant{
			Handle:      handle,
			PrincipalID: p,
			GrantedAt:   now,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(grant).Error; err != nil {
			return internalError("failed to record disclosure grant", err)
		}
	}
	return nil
}

func (s *PermissionService) isAllowed(db *gorm.DB, handle gateway.Handle, p models.PrincipalID) (bool, error) {
	var count int64
	err := db.Model(&models.PermissionGrant{}).
		Where("handle = ? AND principal_id = ?", handle, p).
		Count(&count).Error
	if err != nil {
		return false, internalError("failed to read disclosure grants", err)
	}
	return count > 0, nil
}

// require fails with Unauthorized unless p may see every handle.
func (s *PermissionService) require(db *gorm.DB, p models.PrincipalID, handles ...gateway.Handle) error {
	for _, h := range handles {
		ok, err := s.isAllowed(db, h, p)
		if err != nil {
			return err
		}
		if !ok {
			return wrapError(KindUnauthorized, fmt.Sprintf("%s may not access ciphertext", p), nil)
		}
	}
	return nil
}

// IsAllowed reports whether p may learn the plaintext behind handle.
func (s *PermissionService) IsAllowed(ctx context.Context, handle gateway.Handle, p models.PrincipalID) (bool, error) {
	var allowed bool
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		var err error
		allowed, err = s.isAllowed(db, handle, p)
		return err
	})
	return allowed, err
}

// ListGrantees returns every principal granted on handle, in grant order.
func (s *PermissionService) ListGrantees(ctx context.Context, handle gateway.Handle) ([]models.PrincipalID, error) {
	var grantees []models.PrincipalID
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		var grants []models.PermissionGrant
		if err := db.Where("handle = ?", handle).Order("id ASC").Find(&grants).Error; err != nil {
			return internalError("failed to read disclosure grants", err)
		}
		for _, g := range grants {
			grantees = append(grantees, g.PrincipalID)
		}
		return nil
	})
	return grantees, err
}

// internal/services/disclosure_service.go
package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/models"
)

// DisclosureService is the reference monitor in front of the gateway's user
// decryption path. Plaintext is released only to granted principals.
type DisclosureService struct {
	exec    *Executor
	gateway gateway.Gateway
	perms   *PermissionService
}

type RevealRequest struct {
	Handle gateway.Handle `json:"handle" validate:"required,max=64"`
}

type RevealResponse struct {
	Handle gateway.Handle `json:"handle"`
	Value  uint64         `json:"value"`
}

func NewDisclosureService(exec *Executor, gw gateway.Gateway, perms *PermissionService) *DisclosureService {
	return &DisclosureService{
		exec:    exec,
		gateway: gw,
		perms:   perms,
	}
}

func (s *DisclosureService) Reveal(ctx context.Context, caller models.PrincipalID, handle gateway.Handle) (*RevealResponse, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}

	var value uint64
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		if err := s.perms.require(db, caller, handle); err != nil {
			return err
		}

		var err error
		value, err = s.gateway.Decrypt(ctx, handle)
		if errors.Is(err, gateway.ErrUnknownHandle) {
			return newError(KindNotFound, "ciphertext not found")
		}
		if err != nil {
			return internalError("gateway failed to decrypt", err)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindUnauthorized {
			logrus.WithFields(logrus.Fields{
				"principal": caller,
				"handle":    handle,
			}).Warn("Disclosure refused")
		}
		return nil, err
	}
	return &RevealResponse{Handle: handle, Value: value}, nil
}

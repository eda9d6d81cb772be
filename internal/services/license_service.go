// internal/services/license_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type LicenseService struct {
	exec    *Executor
	gateway gateway.Gateway
	perms   *PermissionService
	events  *EventService
	strict  bool
}

type RequestLicenseRequest struct {
	Fee           uint64 `json:"fee"`
	RoyaltyRateBp uint32 `json:"royalty_rate_bp" validate:"max=10000"`
	RevenueCap    uint64 `json:"revenue_cap"`
	DurationDays  uint32 `json:"duration_days" validate:"min=1"`
	Exclusive     bool   `json:"exclusive"`
	AutoRenewal   bool   `json:"auto_renewal"`
	TerritoryMask uint8  `json:"territory_mask"`
}

type ApproveLicenseRequest struct {
	DurationDays uint32 `json:"duration_days" validate:"min=1"`
}

type UpdateLicenseStatusRequest struct {
	Status models.LicenseStatus `json:"status" validate:"required"`
}

type LicenseSearchParams struct {
	utils.PaginationParams
	Status *models.LicenseStatus `json:"status,omitempty"`
}

func NewLicenseService(exec *Executor, gw gateway.Gateway, perms *PermissionService, events *EventService, strict bool) *LicenseService {
	return &LicenseService{
		exec:    exec,
		gateway: gw,
		perms:   perms,
		events:  events,
		strict:  strict,
	}
}

// Request creates a pending license between the caller and the patent owner.
func (s *LicenseService) Request(ctx context.Context, caller models.PrincipalID, patentID uint64, req *RequestLicenseRequest) (*models.License, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var license models.License
	err := s.exec.Run(ctx, "request_license", func(tx *Tx) error {
		patent, err := loadPatent(tx.DB, patentID)
		if err != nil {
			return err
		}
		if patent.Status != models.PatentStatusActive {
			return newError(KindPatentNotActive, fmt.Sprintf("patent %d is %s", patent.ID, patent.Status))
		}

		fee, err := encryptField(ctx, s.gateway, req.Fee, gateway.WidthUint64)
		if err != nil {
			return err
		}
		rate, err := encryptField(ctx, s.gateway, uint64(req.RoyaltyRateBp), gateway.WidthUint32)
		if err != nil {
			return err
		}
		revenueCap, err := encryptField(ctx, s.gateway, req.RevenueCap, gateway.WidthUint64)
		if err != nil {
			return err
		}
		territory, err := encryptField(ctx, s.gateway, uint64(req.TerritoryMask), gateway.WidthUint8)
		if err != nil {
			return err
		}

		license = models.License{
			PatentID:      patent.ID,
			LicenseeID:    caller,
			LicensorID:    patent.OwnerID,
			Fee:           fee,
			RoyaltyRate:   rate,
			RevenueCap:    revenueCap,
			TerritoryMask: territory,
			Status:        models.LicenseStatusPending,
			IsExclusive:   req.Exclusive,
			AutoRenewal:   req.AutoRenewal,
		}
		if err := tx.Create(&license).Error; err != nil {
			return internalError("failed to create license", err)
		}

		if err := s.grantParties(tx.DB, &license, fee.Handle, rate.Handle, revenueCap.Handle, territory.Handle); err != nil {
			return err
		}

		return s.events.emit(tx, models.EventLicenseRequested, SubjectLicense, license.ID, caller, map[string]interface{}{
			"patent_id":               license.PatentID,
			"licensee_id":             license.LicenseeID,
			"licensor_id":             license.LicensorID,
			"requested_duration_days": req.DurationDays,
			"exclusive":               license.IsExclusive,
		})
	})
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// Approve activates a pending license. Only the licensor may approve, and
// only once.
func (s *LicenseService) Approve(ctx context.Context, caller models.PrincipalID, licenseID uint64, req *ApproveLicenseRequest) (*models.License, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var license *models.License
	err := s.exec.Run(ctx, "approve_license", func(tx *Tx) error {
		var err error
		license, err = loadLicense(tx.DB, licenseID)
		if err != nil {
			return err
		}
		if license.LicensorID != caller {
			return newError(KindUnauthorized, "only the licensor can approve a license")
		}
		if license.Status != models.LicenseStatusPending {
			return newError(KindInvalidState, fmt.Sprintf("license %d is %s, not pending", license.ID, license.Status))
		}

		now := s.exec.Now()
		endsAt := now.Add(time.Duration(req.DurationDays) * 24 * time.Hour)
		license.Status = models.LicenseStatusActive
		license.StartedAt = &now
		license.EndsAt = &endsAt

		if err := tx.Model(license).Updates(map[string]interface{}{
			"status":     license.Status,
			"started_at": now,
			"ends_at":    endsAt,
		}).Error; err != nil {
			return internalError("failed to approve license", err)
		}

		return s.events.emit(tx, models.EventLicenseApproved, SubjectLicense, license.ID, caller, map[string]interface{}{
			"started_at": now,
			"ends_at":    endsAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return license, nil
}

// SetStatus overwrites the license status. Only the licensor may call it.
func (s *LicenseService) SetStatus(ctx context.Context, caller models.PrincipalID, licenseID uint64, status models.LicenseStatus) (*models.License, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}

	var license *models.License
	err := s.exec.Run(ctx, "update_license_status", func(tx *Tx) error {
		var err error
		license, err = loadLicense(tx.DB, licenseID)
		if err != nil {
			return err
		}
		if license.LicensorID != caller {
			return newError(KindUnauthorized, "only the licensor can change license status")
		}
		if err := checkLicenseTransition(s.strict, license.Status, status); err != nil {
			return err
		}

		previous := license.Status
		license.Status = status
		if err := tx.Model(license).Update("status", status).Error; err != nil {
			return internalError("failed to update license status", err)
		}

		return s.events.emit(tx, models.EventLicenseStatusChanged, SubjectLicense, license.ID, caller, map[string]interface{}{
			"from": previous,
			"to":   status,
		})
	})
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (s *LicenseService) Get(ctx context.Context, licenseID uint64) (*models.License, error) {
	var license *models.License
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		var err error
		license, err = loadLicense(db, licenseID)
		return err
	})
	return license, err
}

// ListByPrincipal returns licenses where p is licensee or licensor.
func (s *LicenseService) ListByPrincipal(ctx context.Context, p models.PrincipalID, params *LicenseSearchParams) ([]models.License, int64, error) {
	var licenses []models.License
	var total int64

	err := s.exec.View(ctx, func(db *gorm.DB) error {
		query := db.Model(&models.License{}).Where("licensee_id = ? OR licensor_id = ?", p, p)
		if params.Status != nil {
			query = query.Where("status = ?", *params.Status)
		}
		if err := query.Count(&total).Error; err != nil {
			return internalError("failed to count licenses", err)
		}

		query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "status", "ends_at"})
		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Find(&licenses).Error; err != nil {
			return internalError("failed to list licenses", err)
		}
		return nil
	})
	return licenses, total, err
}

// grantParties gives licensee, licensor and the ledger disclosure over handles.
func (s *LicenseService) grantParties(db *gorm.DB, license *models.License, handles ...gateway.Handle) error {
	for _, h := range handles {
		if err := s.perms.grant(db, h, license.LicenseeID, license.LicensorID, models.LedgerPrincipal); err != nil {
			return err
		}
	}
	return nil
}

func loadLicense(db *gorm.DB, licenseID uint64) (*models.License, error) {
	var license models.License
	if err := db.First(&license, licenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("license %d not found", licenseID))
		}
		return nil, internalError("database error", err)
	}
	return &license, nil
}

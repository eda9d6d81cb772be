// internal/services/patent_service.go
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

type PatentService struct {
	exec    *Executor
	gateway gateway.Gateway
	perms   *PermissionService
	events  *EventService
	strict  bool
}

type RegisterPatentRequest struct {
	RoyaltyRateBp         uint32 `json:"royalty_rate_bp" validate:"max=10000"`
	MinLicenseFee         uint64 `json:"min_license_fee"`
	ExclusivityPeriodDays uint32 `json:"exclusivity_period_days"`
	ValidityYears         uint32 `json:"validity_years" validate:"min=1,max=20"`
	ReferenceHash         string `json:"reference_hash" validate:"max=256"`
	TerritoryCode         uint8  `json:"territory_code"`
	Confidential          bool   `json:"confidential"`
}

type UpdatePatentStatusRequest struct {
	Status models.PatentStatus `json:"status" validate:"required"`
}

const daysPerYear = 365

func NewPatentService(exec *Executor, gw gateway.Gateway, perms *PermissionService, events *EventService, strict bool) *PatentService {
	return &PatentService{
		exec:    exec,
		gateway: gw,
		perms:   perms,
		events:  events,
		strict:  strict,
	}
}

func (s *PatentService) Register(ctx context.Context, caller models.PrincipalID, req *RegisterPatentRequest) (*models.Patent, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var patent models.Patent
	err := s.exec.Run(ctx, "register_patent", func(tx *Tx) error {
		rate, err := encryptField(ctx, s.gateway, uint64(req.RoyaltyRateBp), gateway.WidthUint32)
		if err != nil {
			return err
		}
		fee, err := encryptField(ctx, s.gateway, req.MinLicenseFee, gateway.WidthUint64)
		if err != nil {
			return err
		}
		days, err := encryptField(ctx, s.gateway, uint64(req.ExclusivityPeriodDays), gateway.WidthUint32)
		if err != nil {
			return err
		}

		now := s.exec.Now()
		patent = models.Patent{
			OwnerID:               caller,
			RoyaltyRate:           rate,
			MinLicenseFee:         fee,
			ExclusivityPeriodDays: days,
			RegisteredAt:          now,
			ExpiresAt:             now.Add(time.Duration(req.ValidityYears) * daysPerYear * 24 * time.Hour),
			Status:                models.PatentStatusActive,
			IsConfidential:        req.Confidential,
			ReferenceHash:         req.ReferenceHash,
			TerritoryCode:         req.TerritoryCode,
		}
		if err := tx.Create(&patent).Error; err != nil {
			return internalError("failed to create patent", err)
		}

		grantees := []models.PrincipalID{models.LedgerPrincipal}
		if !req.Confidential {
			grantees = append(grantees, caller)
		}
		for _, h := range []gateway.Handle{rate.Handle, fee.Handle, days.Handle} {
			if err := s.perms.grant(tx.DB, h, grantees...); err != nil {
				return err
			}
		}

		return s.events.emit(tx, models.EventPatentRegistered, SubjectPatent, patent.ID, caller, map[string]interface{}{
			"owner_id":       patent.OwnerID,
			"expires_at":     patent.ExpiresAt,
			"confidential":   patent.IsConfidential,
			"reference_hash": patent.ReferenceHash,
		})
	})
	if err != nil {
		return nil, err
	}
	return &patent, nil
}

// SetStatus overwrites the patent status. Only the owner may call it.
func (s *PatentService) SetStatus(ctx context.Context, caller models.PrincipalID, patentID uint64, status models.PatentStatus) (*models.Patent, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}

	var patent *models.Patent
	err := s.exec.Run(ctx, "update_patent_status", func(tx *Tx) error {
		var err error
		patent, err = loadPatent(tx.DB, patentID)
		if err != nil {
			return err
		}
		if patent.OwnerID != caller {
			return newError(KindUnauthorized, "only the patent owner can change its status")
		}
		if err := checkPatentTransition(s.strict, patent.Status, status); err != nil {
			return err
		}

		previous := patent.Status
		patent.Status = status
		if err := tx.Model(patent).Update("status", status).Error; err != nil {
			return internalError("failed to update patent status", err)
		}

		return s.events.emit(tx, models.EventPatentStatusChanged, SubjectPatent, patent.ID, caller, map[string]interface{}{
			"from": previous,
			"to":   status,
		})
	})
	if err != nil {
		return nil, err
	}
	return patent, nil
}

// Get returns the patent with its confidential terms as handles only.
func (s *PatentService) Get(ctx context.Context, patentID uint64) (*models.Patent, error) {
	var patent *models.Patent
	err := s.exec.View(ctx, func(db *gorm.DB) error {
		var err error
		patent, err = loadPatent(db, patentID)
		return err
	})
	return patent, err
}

func (s *PatentService) ListByOwner(ctx context.Context, owner models.PrincipalID, params utils.PaginationParams) ([]models.Patent, int64, error) {
	var patents []models.Patent
	var total int64

	err := s.exec.View(ctx, func(db *gorm.DB) error {
		query := db.Model(&models.Patent{}).Where("owner_id = ?", owner)
		if err := query.Count(&total).Error; err != nil {
			return internalError("failed to count patents", err)
		}

		query = utils.ApplySort(query, params, []string{"created_at", "expires_at", "status"})
		query = utils.ApplyPagination(query, params)
		if err := query.Find(&patents).Error; err != nil {
			return internalError("failed to list patents", err)
		}
		return nil
	})
	return patents, total, err
}

func loadPatent(db *gorm.DB, patentID uint64) (*models.Patent, error) {
	var patent models.Patent
	if err := db.First(&patent, patentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("patent %d not found", patentID))
		}
		return nil, internalError("database error", err)
	}
	return &patent, nil
}

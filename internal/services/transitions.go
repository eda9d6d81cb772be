// internal/services/transitions.go
package services

import (
	"fmt"

	"github.com/javajoker/imi-ledger/internal/models"
)

// Allowed status moves when strict transitions are enabled. Without strict
// mode any valid status overwrites the current one.
var patentTransitions = map[models.PatentStatus][]models.PatentStatus{
	models.PatentStatusActive:    {models.PatentStatusSuspended, models.PatentStatusExpired},
	models.PatentStatusSuspended: {models.PatentStatusActive, models.PatentStatusExpired},
}

var licenseTransitions = map[models.LicenseStatus][]models.LicenseStatus{
	models.LicenseStatusPending:   {models.LicenseStatusRevoked},
	models.LicenseStatusActive:    {models.LicenseStatusSuspended, models.LicenseStatusExpired, models.LicenseStatusRevoked},
	models.LicenseStatusSuspended: {models.LicenseStatusActive, models.LicenseStatusExpired, models.LicenseStatusRevoked},
}

func checkPatentTransition(strict bool, from, to models.PatentStatus) error {
	if !to.IsValid() {
		return newError(KindInvalidParameter, fmt.Sprintf("unknown patent status %q", to))
	}
	if !strict {
		return nil
	}
	for _, next := range patentTransitions[from] {
		if next == to {
			return nil
		}
	}
	return newError(KindInvalidState, fmt.Sprintf("patent cannot move from %s to %s", from, to))
}

func checkLicenseTransition(strict bool, from, to models.LicenseStatus) error {
	if !to.IsValid() {
		return newError(KindInvalidParameter, fmt.Sprintf("unknown license status %q", to))
	}
	if !strict {
		return nil
	}
	for _, next := range licenseTransitions[from] {
		if next == to {
			return nil
		}
	}
	return newError(KindInvalidState, fmt.Sprintf("license cannot move from %s to %s", from, to))
}

// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /patents/:id/licenses
func (h *LicenseHandler) RequestLicense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RequestLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	license, err := h.licenseService.Request(c.Request.Context(), caller, patentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseRequested),
		"license": license,
	})
}

// GET /licenses
func (h *LicenseHandler) ListMyLicenses(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.LicenseSearchParams{
		PaginationParams: params,
	}
	if status := c.Query("status"); status != "" {
		licenseStatus := models.LicenseStatus(status)
		searchParams.Status = &licenseStatus
	}

	licenses, total, err := h.licenseService.ListByPrincipal(c.Request.Context(), caller, &searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(licenses, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /licenses/:id
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	license, err := h.licenseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": license,
	})
}

// PUT /licenses/:id/approve
func (h *LicenseHandler) ApproveLicense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ApproveLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	license, err := h.licenseService.Approve(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseApproved),
		"license": license,
	})
}

// PUT /licenses/:id/status
func (h *LicenseHandler) UpdateLicenseStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLicenseStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	license, err := h.licenseService.SetStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseStatusUpdated),
		"license": license,
	})
}

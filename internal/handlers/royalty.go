// internal/handlers/royalty.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type RoyaltyHandler struct {
	royaltyService *services.RoyaltyService
}

func NewRoyaltyHandler(royaltyService *services.RoyaltyService) *RoyaltyHandler {
	return &RoyaltyHandler{
		royaltyService: royaltyService,
	}
}

// POST /licenses/:id/royalties
func (h *RoyaltyHandler) PayRoyalties(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	licenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PayRoyaltyRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.royaltyService.Pay(c.Request.Context(), caller, licenseID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRoyaltyPaid),
		"payment": payment,
	})
}

// GET /licenses/:id/royalties
func (h *RoyaltyHandler) ListPayments(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	licenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.royaltyService.ListPayments(c.Request.Context(), caller, licenseID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payments": payments,
	})
}

// POST /licenses/:id/royalties/:index/verify
func (h *RoyaltyHandler) RequestVerification(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	licenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid index", nil)
		return
	}

	token, err := h.royaltyService.RequestVerification(c.Request.Context(), caller, licenseID, uint32(index))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.AcceptedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRoyaltyVerificationRequested),
		"token":   token,
	})
}

// internal/handlers/disclosure.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type DisclosureHandler struct {
	disclosureService *services.DisclosureService
}

func NewDisclosureHandler(disclosureService *services.DisclosureService) *DisclosureHandler {
	return &DisclosureHandler{
		disclosureService: disclosureService,
	}
}

// POST /disclosures
func (h *DisclosureHandler) Reveal(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.RevealRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	revealed, err := h.disclosureService.Reveal(c.Request.Context(), caller, req.Handle)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, revealed)
}

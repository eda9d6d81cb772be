// internal/handlers/patent.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type PatentHandler struct {
	patentService *services.PatentService
}

func NewPatentHandler(patentService *services.PatentService) *PatentHandler {
	return &PatentHandler{
		patentService: patentService,
	}
}

// POST /patents
func (h *PatentHandler) RegisterPatent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.RegisterPatentRequest
	if !bindJSON(c, &req) {
		return
	}

	patent, err := h.patentService.Register(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPatentRegistered),
		"patent":  patent,
	})
}

// GET /patents/:id
func (h *PatentHandler) GetPatent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patent, err := h.patentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"patent": patent,
	})
}

// GET /patents/mine
func (h *PatentHandler) ListMyPatents(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	patents, total, err := h.patentService.ListByOwner(c.Request.Context(), caller, params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(patents, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /patents/:id/status
func (h *PatentHandler) UpdatePatentStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePatentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	patent, err := h.patentService.SetStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPatentStatusUpdated),
		"patent":  patent,
	})
}

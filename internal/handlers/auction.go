// internal/handlers/auction.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type AuctionHandler struct {
	auctionService *services.AuctionService
}

func NewAuctionHandler(auctionService *services.AuctionService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
	}
}

// POST /patents/:id/auction
func (h *AuctionHandler) OpenAuction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.OpenAuctionRequest
	if !bindJSON(c, &req) {
		return
	}

	auction, err := h.auctionService.Open(c.Request.Context(), caller, patentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuctionOpened),
		"auction": auction,
	})
}

// GET /patents/:id/auction
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	patentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.auctionService.Get(c.Request.Context(), patentID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, view)
}

// POST /patents/:id/auction/bids
func (h *AuctionHandler) SubmitBid(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitBidRequest
	if !bindJSON(c, &req) {
		return
	}

	bid, err := h.auctionService.SubmitBid(c.Request.Context(), caller, patentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuctionBidAccepted),
		"bid":     bid,
	})
}

// POST /patents/:id/auction/finalize
func (h *AuctionHandler) FinalizeAuction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	auction, license, err := h.auctionService.Finalize(c.Request.Context(), caller, patentID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := i18n.T(lang, i18n.KeyAuctionFinalized)
	if license == nil {
		message = i18n.T(lang, i18n.KeyAuctionNoBids)
	}
	utils.SuccessResponse(c, gin.H{
		"message": message,
		"auction": auction,
		"license": license,
	})
}

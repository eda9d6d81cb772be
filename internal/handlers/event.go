// internal/handlers/event.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.EventSearchParams{
		PaginationParams: params,
		SubjectType:      c.Query("subject_type"),
	}
	if kind := c.Query("kind"); kind != "" {
		eventKind := models.EventKind(kind)
		searchParams.Kind = &eventKind
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		if id, err := strconv.ParseUint(subjectID, 10, 64); err == nil {
			searchParams.SubjectID = &id
		}
	}

	events, total, err := h.eventService.List(c.Request.Context(), &searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /events/verify
func (h *EventHandler) VerifyChain(c *gin.Context) {
	if err := h.eventService.VerifyChain(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"valid": true,
	})
}

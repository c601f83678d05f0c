package handler

import (
	"context"
	"net/http"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RewatchHandler struct {
	svc service.RewatchService
}

func NewRewatchHandler(svc service.RewatchService) *RewatchHandler {
	return &RewatchHandler{svc: svc}
}

func (h *RewatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Log)
	rg.GET("/:media_type/:id", h.List)
	rg.DELETE("/:id", h.Delete)
}

func (h *RewatchHandler) Log(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RewatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.svc.LogRewatch(ctx, userID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *RewatchHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, mediaType, ok := mediaKey(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.svc.ListRewatches(ctx, userID, id, mediaType)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.RewatchEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"rewatches": entries})
}

func (h *RewatchHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.DeleteRewatch(ctx, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/years", h.Years)
	rg.GET("/years/:year", h.Year)
	rg.POST("/years/:year/recalculate", h.Recalculate)
	rg.GET("/lifetime", h.Lifetime)
}

// Years lists the years that have any watch activity, newest first.
func (h *StatsHandler) Years(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	years, err := h.svc.ListStatsYears(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// Year returns the stored summary, computing it on first access.
func (h *StatsHandler) Year(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, ok := intParam(c, "year")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.svc.GetYearlyStats(ctx, userID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

func (h *StatsHandler) Recalculate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, ok := intParam(c, "year")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.svc.CalculateYearlyStats(ctx, userID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

func (h *StatsHandler) Lifetime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.svc.GetLifetimeStats(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

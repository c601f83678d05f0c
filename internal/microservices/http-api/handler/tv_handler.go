package handler

import (
	"context"
	"net/http"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TvHandler struct {
	svc service.TvShowEpisodeService
}

func NewTvHandler(svc service.TvShowEpisodeService) *TvHandler {
	return &TvHandler{svc: svc}
}

func (h *TvHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:show_id/progress", h.Progress)
	rg.GET("/:show_id/seasons/:season", h.Season)
	rg.POST("/:show_id/seasons/:season/watched", h.MarkSeason)
	rg.PUT("/:show_id/seasons/:season/episodes/:episode", h.SetEpisode)
}

func (h *TvHandler) SetEpisode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	showID, ok := int64Param(c, "show_id")
	if !ok {
		return
	}
	season, ok := intParam(c, "season")
	if !ok {
		return
	}
	episode, ok := intParam(c, "episode")
	if !ok {
		return
	}

	var req dto.EpisodeWatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	progress, err := h.svc.SetEpisodeWatched(ctx, userID, showID, season, episode, *req.Watched)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// MarkSeason marks every aired episode of the season as watched.
func (h *TvHandler) MarkSeason(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	showID, ok := int64Param(c, "show_id")
	if !ok {
		return
	}
	season, ok := intParam(c, "season")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	marked, err := h.svc.MarkSeasonWatched(ctx, userID, showID, season)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

func (h *TvHandler) Progress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	showID, ok := int64Param(c, "show_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	progress, err := h.svc.ShowProgress(ctx, userID, showID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *TvHandler) Season(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	showID, ok := int64Param(c, "show_id")
	if !ok {
		return
	}
	season, ok := intParam(c, "season")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	episodes, err := h.svc.SeasonEpisodes(ctx, userID, showID, season)
	if err != nil {
		respondError(c, err)
		return
	}
	if episodes == nil {
		episodes = []service.EpisodeStatus{}
	}
	c.JSON(http.StatusOK, gin.H{"show_id": showID, "season": season, "episodes": episodes})
}


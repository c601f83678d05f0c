package handler

import (
	"context"
	"net/http"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	svc service.LibraryService
}

func NewLibraryHandler(svc service.LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status/:media_type/:id", h.Status)
	rg.GET("/:bucket", h.List)
	rg.GET("/:bucket/:media_type/:id", h.Get)
	rg.POST("/watched", h.MarkWatched)
	rg.POST("/planned", h.AddPlanned)
	rg.POST("/watching", h.AddWatching)
	rg.PUT("/watched/:media_type/:id/rating", h.Rate)
	rg.DELETE("/:bucket/:media_type/:id", h.Remove)
}

// List returns every item of one bucket, newest first.
func (h *LibraryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bucket := c.Param("bucket")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.svc.List(ctx, userID, bucket)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []service.LibraryItem{}
	}

	c.JSON(http.StatusOK, dto.LibraryListResponse{
		Bucket: bucket,
		Items:  items,
		Total:  len(items),
	})
}

func (h *LibraryHandler) Get(c *gin.Context) {
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

	item, err := h.svc.Get(ctx, userID, c.Param("bucket"), id, mediaType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LibraryHandler) MarkWatched(c *gin.Context) {
	h.add(c, func(ctx context.Context, userID string, in service.MediaInput) (any, error) {
		return h.svc.MarkWatched(ctx, userID, in)
	})
}

func (h *LibraryHandler) AddPlanned(c *gin.Context) {
	h.add(c, func(ctx context.Context, userID string, in service.MediaInput) (any, error) {
		return h.svc.AddPlanned(ctx, userID, in)
	})
}

func (h *LibraryHandler) AddWatching(c *gin.Context) {
	h.add(c, func(ctx context.Context, userID string, in service.MediaInput) (any, error) {
		return h.svc.AddWatching(ctx, userID, in)
	})
}

func (h *LibraryHandler) add(c *gin.Context, fn func(context.Context, string, service.MediaInput) (any, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.MediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// metadata lookups may hit TMDB
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	item, err := fn(ctx, userID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *LibraryHandler) Remove(c *gin.Context) {
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

	if err := h.svc.Remove(ctx, userID, c.Param("bucket"), id, mediaType); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Rate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, mediaType, ok := mediaKey(c)
	if !ok {
		return
	}

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.RateItem(ctx, userID, id, mediaType, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Status reports which buckets hold the item.
func (h *LibraryHandler) Status(c *gin.Context) {
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

	status, err := h.svc.Status(ctx, userID, id, mediaType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"
	"cinetrack/internal/tmdb"

	"github.com/gin-gonic/gin"
)

// MetadataHandler proxies TMDB lookups and the discover feed.
type MetadataHandler struct {
	metadata        service.MetadataClient
	recommendations service.RecommendationService
}

func NewMetadataHandler(metadata service.MetadataClient, recommendations service.RecommendationService) *MetadataHandler {
	return &MetadataHandler{metadata: metadata, recommendations: recommendations}
}

func (h *MetadataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
	rg.GET("/:media_type/:id", h.Details)
}

// RegisterDiscoverRoutes mounts the discover feed on the recommendations group.
func (h *MetadataHandler) RegisterDiscoverRoutes(rg *gin.RouterGroup) {
	rg.GET("/discover", h.Discover)
}

func (h *MetadataHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	page := queryInt(c, "page", 1, 500)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.metadata.SearchMulti(ctx, query, page)
	if err != nil {
		respondError(c, err)
		return
	}
	if results.Results == nil {
		results.Results = []tmdb.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *MetadataHandler) Details(c *gin.Context) {
	id, mediaType, ok := mediaKey(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var (
		details any
		err     error
	)
	if mediaType == models.MediaTypeMovie {
		details, err = h.metadata.MovieDetails(ctx, id)
	} else {
		details, err = h.metadata.TVDetails(ctx, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Discover returns titles recommended from the user's highest rated items.
func (h *MetadataHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 20, 100)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	results, err := h.recommendations.ForUser(ctx, userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []tmdb.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}


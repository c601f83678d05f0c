package handler

import (
	"net/http"
	"strconv"

	"cinetrack/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated user id, writing a 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return id, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// mediaKey reads the :media_type/:id pair used by library routes.
func mediaKey(c *gin.Context) (int64, string, bool) {
	mediaType := c.Param("media_type")
	if !models.ValidMediaType(mediaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media type must be movie or tv"})
		return 0, "", false
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return 0, "", false
	}
	return id, mediaType, true
}

// queryInt parses an optional positive integer query value, clamped to max.
func queryInt(c *gin.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

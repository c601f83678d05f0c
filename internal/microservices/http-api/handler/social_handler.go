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

// SocialHandler serves friends, friend requests, the activity feed and the
// recommendation inbox.
type SocialHandler struct {
	friends         service.FriendService
	recommendations service.FriendRecommendationService
	activity        service.ActivityService
}

func NewSocialHandler(friends service.FriendService, recommendations service.FriendRecommendationService, activity service.ActivityService) *SocialHandler {
	return &SocialHandler{friends: friends, recommendations: recommendations, activity: activity}
}

func (h *SocialHandler) RegisterFriendRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListFriends)
	rg.DELETE("/:friend_id", h.RemoveFriend)
}

func (h *SocialHandler) RegisterRequestRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.SendRequest)
	rg.GET("/incoming", h.Incoming)
	rg.GET("/outgoing", h.Outgoing)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/decline", h.Decline)
	rg.DELETE("/:id", h.Cancel)
}

func (h *SocialHandler) RegisterFeedRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Feed)
}

func (h *SocialHandler) RegisterInboxRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Recommend)
	rg.GET("/inbox", h.Inbox)
	rg.PUT("/inbox/:id/seen", h.MarkSeen)
	rg.DELETE("/inbox/:id", h.DeleteRecommendation)
}

func (h *SocialHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	friends, err := h.friends.ListFriends(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if friends == nil {
		friends = []models.Friendship{}
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.friends.RemoveFriend(ctx, userID, c.Param("friend_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SocialHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.FriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fr, err := h.friends.SendRequest(ctx, userID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fr)
}

func (h *SocialHandler) Incoming(c *gin.Context) {
	h.listRequests(c, h.friends.ListIncoming)
}

func (h *SocialHandler) Outgoing(c *gin.Context) {
	h.listRequests(c, h.friends.ListOutgoing)
}

func (h *SocialHandler) listRequests(c *gin.Context, list func(context.Context, string) ([]models.FriendRequest, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	requests, err := list(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if requests == nil {
		requests = []models.FriendRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *SocialHandler) Accept(c *gin.Context) {
	h.answerRequest(c, h.friends.Accept)
}

func (h *SocialHandler) Decline(c *gin.Context) {
	h.answerRequest(c, h.friends.Decline)
}

func (h *SocialHandler) Cancel(c *gin.Context) {
	h.answerRequest(c, h.friends.Cancel)
}

func (h *SocialHandler) answerRequest(c *gin.Context, fn func(context.Context, string, int64) error) {
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

	if err := fn(ctx, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Feed pages backwards through friends' activity; ?before takes RFC3339.
func (h *SocialHandler) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50, 200)

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "before must be an RFC3339 timestamp"})
			return
		}
		before = t
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	activities, err := h.activity.Feed(ctx, userID, limit, before)
	if err != nil {
		respondError(c, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *SocialHandler) Recommend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.recommendations.Send(ctx, userID, req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *SocialHandler) Inbox(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	unseenOnly := c.Query("unseen") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recs, err := h.recommendations.Inbox(ctx, userID, unseenOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *SocialHandler) MarkSeen(c *gin.Context) {
	h.answerRequest(c, h.recommendations.MarkSeen)
}

func (h *SocialHandler) DeleteRecommendation(c *gin.Context) {
	h.answerRequest(c, h.recommendations.Delete)
}

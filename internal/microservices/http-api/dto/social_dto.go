package dto

import "cinetrack/internal/microservices/http-api/models"

// CollectionRequest: create or update a collection
type CollectionRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// UpdateCollectionRequest: name may be omitted to keep the current one
type UpdateCollectionRequest struct {
	Name        string `json:"name" binding:"max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// CollectionItemRequest: add an item to a collection
type CollectionItemRequest struct {
	ItemID     int64  `json:"item_id" binding:"required,gt=0"`
	MediaType  string `json:"media_type" binding:"required,mediatype"`
	Title      string `json:"title" binding:"required,max=500"`
	PosterPath string `json:"poster_path"`
}

func (r CollectionItemRequest) ToModel() models.CollectionItem {
	return models.CollectionItem{
		ItemID:     r.ItemID,
		MediaType:  r.MediaType,
		Title:      r.Title,
		PosterPath: r.PosterPath,
	}
}

// FriendRequestBody: send a friend request by username
type FriendRequestBody struct {
	Username string `json:"username" binding:"required"`
}

// RecommendRequest: recommend an item to a friend
type RecommendRequest struct {
	ToUserID   string `json:"to_user_id" binding:"required,uuid"`
	ItemID     int64  `json:"item_id" binding:"required,gt=0"`
	MediaType  string `json:"media_type" binding:"required,mediatype"`
	Title      string `json:"title" binding:"required,max=500"`
	PosterPath string `json:"poster_path"`
	Message    string `json:"message" binding:"max=500"`
}

func (r RecommendRequest) ToModel() models.Recommendation {
	return models.Recommendation{
		ToUserID:   r.ToUserID,
		ItemID:     r.ItemID,
		MediaType:  r.MediaType,
		Title:      r.Title,
		PosterPath: r.PosterPath,
		Message:    r.Message,
	}
}

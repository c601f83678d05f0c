package dto

import (
	"time"

	"cinetrack/internal/microservices/http-api/service"
)

// MediaRequest places an item into a library bucket. Only id and media_type
// are required; the rest is filled from TMDB when omitted.
type MediaRequest struct {
	ID          int64      `json:"id" binding:"required,gt=0"`
	MediaType   string     `json:"media_type" binding:"required,mediatype"`
	Title       string     `json:"title" binding:"max=500"`
	PosterPath  string     `json:"poster_path"`
	Runtime     int        `json:"runtime" binding:"gte=0"`
	VoteAverage float64    `json:"vote_average" binding:"gte=0,lte=10"`
	GenreIDs    []int      `json:"genre_ids"`
	Rating      *float64   `json:"rating" binding:"omitempty,rating"`
	WatchedAt   *time.Time `json:"watched_at"`
}

// ToInput converts the request into the service input.
func (r MediaRequest) ToInput() service.MediaInput {
	in := service.MediaInput{
		ID:          r.ID,
		MediaType:   r.MediaType,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		Runtime:     r.Runtime,
		VoteAverage: r.VoteAverage,
		GenreIDs:    r.GenreIDs,
		Rating:      r.Rating,
	}
	if r.WatchedAt != nil {
		in.WatchedAt = *r.WatchedAt
	}
	return in
}

// RateRequest: payload to rate a watched item
type RateRequest struct {
	Rating float64 `json:"rating" binding:"required,rating"`
}

// LibraryListResponse: one bucket of the library
type LibraryListResponse struct {
	Bucket string                `json:"bucket"`
	Items  []service.LibraryItem `json:"items"`
	Total  int                   `json:"total"`
}

// RewatchRequest logs another viewing of a watched item.
type RewatchRequest struct {
	ItemID    int64      `json:"item_id" binding:"required,gt=0"`
	MediaType string     `json:"media_type" binding:"required,mediatype"`
	WatchedAt *time.Time `json:"watched_at"`
	Rating    *float64   `json:"rating" binding:"omitempty,rating"`
	Minutes   int        `json:"watch_time_minutes" binding:"gte=0"`
}

func (r RewatchRequest) ToInput() service.RewatchInput {
	in := service.RewatchInput{
		ItemID:    r.ItemID,
		MediaType: r.MediaType,
		Rating:    r.Rating,
		Minutes:   r.Minutes,
	}
	if r.WatchedAt != nil {
		in.WatchedAt = *r.WatchedAt
	}
	return in
}

// EpisodeWatchedRequest toggles a single episode.
type EpisodeWatchedRequest struct {
	Watched *bool `json:"watched" binding:"required"`
}

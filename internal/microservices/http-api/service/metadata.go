package service

import (
	"context"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/tmdb"
)

// MetadataClient is the slice of the TMDB client the services depend on.
type MetadataClient interface {
	SearchMulti(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	TVDetails(ctx context.Context, id int64) (*tmdb.TVDetails, error)
	FreshTVDetails(ctx context.Context, id int64) (*tmdb.TVDetails, error)
	SeasonDetails(ctx context.Context, showID int64, season int) (*tmdb.SeasonDetails, error)
	Recommendations(ctx context.Context, mediaType string, id int64) ([]tmdb.SearchResult, error)
	Credits(ctx context.Context, mediaType string, id int64) (*tmdb.Credits, error)
}

// ActivityPoster records an activity and fans it out to friends.
type ActivityPoster interface {
	Post(ctx context.Context, a *models.Activity)
}

// StatsInvalidator drops yearly rows made stale by a history change.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID string, at ...time.Time)
}

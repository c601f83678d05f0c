package models

import (
	"time"

	"github.com/goccy/go-json"
)

// YearlyStats is the derived per-year summary row. Year 0 is never stored;
// lifetime summaries use the same shape but are computed on demand.
type YearlyStats struct {
	UserID string `gorm:"type:uuid;primaryKey" json:"user_id"`
	Year   int    `gorm:"primaryKey;autoIncrement:false" json:"year"`

	TotalMoviesWatched    int `json:"total_movies_watched"`
	TotalShowsWatched     int `json:"total_shows_watched"`
	TotalEpisodesWatched  int `json:"total_episodes_watched"`
	TotalRewatches        int `json:"total_rewatches"`
	MovieWatchTimeMinutes int `json:"movie_watch_time_minutes"`
	RewatchTimeMinutes    int `json:"rewatch_time_minutes"`
	TotalWatchTimeMinutes int `json:"total_watch_time_minutes"`

	FavoriteGenreID    *int    `json:"favorite_genre_id,omitempty"`
	FavoriteGenreCount int     `json:"favorite_genre_count"`
	FavoriteActor      *string `json:"favorite_actor,omitempty"`
	FavoriteDirector   *string `json:"favorite_director,omitempty"`

	TopRatedID        *int64   `json:"top_rated_id,omitempty"`
	TopRatedMediaType *string  `json:"top_rated_media_type,omitempty"`
	TopRatedTitle     *string  `json:"top_rated_title,omitempty"`
	TopRatedRating    *float64 `json:"top_rated_rating,omitempty"`

	LongestMovieID      *int64  `json:"longest_movie_id,omitempty"`
	LongestMovieTitle   *string `json:"longest_movie_title,omitempty"`
	LongestMovieRuntime int     `json:"longest_movie_runtime"`

	MostRewatchedID        *int64  `json:"most_rewatched_id,omitempty"`
	MostRewatchedMediaType *string `json:"most_rewatched_media_type,omitempty"`
	MostRewatchedTitle     *string `json:"most_rewatched_title,omitempty"`
	MostRewatchedCount     int     `json:"most_rewatched_count"`

	AverageRating    float64 `json:"average_rating"`
	MonthlyBreakdown string  `gorm:"type:text;not null" json:"monthly_breakdown"` // JSON array of 12 ints

	CalculatedAt time.Time `json:"calculated_at"`
}

func (YearlyStats) TableName() string {
	return "yearly_stats"
}

// Months decodes MonthlyBreakdown. A malformed or empty column yields twelve zeros.
func (s YearlyStats) Months() []int {
	months := make([]int, 12)
	var decoded []int
	if err := json.Unmarshal([]byte(s.MonthlyBreakdown), &decoded); err != nil || len(decoded) != 12 {
		return months
	}
	copy(months, decoded)
	return months
}

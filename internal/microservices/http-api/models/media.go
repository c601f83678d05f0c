package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether t is one of the two supported discriminators.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// WatchedItem is a movie or show the user has finished at least once.
type WatchedItem struct {
	UserID      string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MediaType   string    `gorm:"primaryKey;size:8" json:"media_type"`
	Title       string    `gorm:"not null" json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Runtime     int       `gorm:"default:0" json:"runtime"` // minutes
	VoteAverage float64   `gorm:"default:0" json:"vote_average"`
	UserRating  *float64  `json:"user_rating,omitempty"`
	WatchCount  int       `gorm:"default:1;not null" json:"watch_count"`
	GenreIDs    string    `json:"genre_ids"` // comma separated TMDB genre ids
	Director    string    `json:"director,omitempty"`
	TopCast     string    `json:"top_cast,omitempty"` // comma separated names
	DateWatched time.Time `gorm:"not null;index" json:"date_watched"`
}

func (WatchedItem) TableName() string {
	return "watched_items"
}

// PlannedItem sits in the watch-later bucket.
type PlannedItem struct {
	UserID      string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MediaType   string    `gorm:"primaryKey;size:8" json:"media_type"`
	Title       string    `gorm:"not null" json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Runtime     int       `json:"runtime"`
	VoteAverage float64   `json:"vote_average"`
	GenreIDs    string    `json:"genre_ids"`
	AddedAt     time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (PlannedItem) TableName() string {
	return "planned_items"
}

// WatchingItem is in progress; TV shows here are polled for new episodes.
type WatchingItem struct {
	UserID      string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MediaType   string    `gorm:"primaryKey;size:8" json:"media_type"`
	Title       string    `gorm:"not null" json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Runtime     int       `json:"runtime"`
	VoteAverage float64   `json:"vote_average"`
	GenreIDs    string    `json:"genre_ids"`
	StartedAt   time.Time `gorm:"autoCreateTime" json:"started_at"`
}

func (WatchingItem) TableName() string {
	return "watching_items"
}

// SplitList splits a comma separated column into trimmed, non-empty values.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseGenreIDs parses the comma separated genre column, skipping anything
// that is not an integer.
func ParseGenreIDs(s string) []int {
	var ids []int
	for _, p := range SplitList(s) {
		id, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// JoinGenreIDs is the inverse of ParseGenreIDs.
func JoinGenreIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

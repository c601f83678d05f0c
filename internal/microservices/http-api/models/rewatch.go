package models

import "time"

// RewatchEntry is an append-only log line for each additional viewing.
type RewatchEntry struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           string    `gorm:"type:uuid;not null;index:idx_rewatch_user_item" json:"user_id"`
	ItemID           int64     `gorm:"not null;index:idx_rewatch_user_item" json:"item_id"`
	MediaType        string    `gorm:"size:8;not null;index:idx_rewatch_user_item" json:"media_type"`
	Title            string    `json:"title"`
	WatchedAt        time.Time `gorm:"not null;index" json:"watched_at"`
	Rating           *float64  `json:"rating,omitempty"`
	WatchTimeMinutes int       `gorm:"default:0" json:"watch_time_minutes"`
}

func (RewatchEntry) TableName() string {
	return "rewatch_entries"
}

// RewatchCount is the row shape of the grouped "most rewatched" query.
type RewatchCount struct {
	ItemID    int64  `json:"item_id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Count     int    `json:"count"`
}

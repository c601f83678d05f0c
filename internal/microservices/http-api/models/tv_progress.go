package models

import "time"

// TvShowProgress is the per-episode watched flag.
type TvShowProgress struct {
	UserID    string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	ShowID    int64      `gorm:"primaryKey;autoIncrement:false" json:"show_id"`
	Season    int        `gorm:"primaryKey;autoIncrement:false" json:"season"`
	Episode   int        `gorm:"primaryKey;autoIncrement:false" json:"episode"`
	Watched   bool       `gorm:"default:false" json:"watched"`
	WatchedAt *time.Time `gorm:"index" json:"watched_at,omitempty"`
	Runtime   int        `gorm:"default:0" json:"runtime"` // minutes
}

func (TvShowProgress) TableName() string {
	return "tv_show_progress"
}

// TvShowSnapshot is the last metadata observation used to detect new episodes.
type TvShowSnapshot struct {
	UserID           string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ShowID           int64     `gorm:"primaryKey;autoIncrement:false" json:"show_id"`
	Title            string    `json:"title"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	LastAirDate      string    `json:"last_air_date"`
	Status           string    `json:"status"`
	CheckedAt        time.Time `json:"checked_at"`
}

func (TvShowSnapshot) TableName() string {
	return "tv_show_snapshots"
}

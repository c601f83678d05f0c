package models

import "time"

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestDeclined = "declined"
)

// Friendship is stored once per direction so "my friends" is a single lookup.
type Friendship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair" json:"user_id"`
	FriendID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	Friend *User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}

func (Friendship) TableName() string {
	return "friendships"
}

type FriendRequest struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID  string     `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID    string     `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	FromUser *User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   *User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

const (
	ActivityWatched     = "watched"
	ActivityRated       = "rated"
	ActivityPlanned     = "planned"
	ActivityCollection  = "collection"
	ActivityRecommended = "recommended"
)

// Activity is one entry of a user's shared activity feed.
type Activity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Username  string    `json:"username"`
	Type      string    `gorm:"not null" json:"type"`
	ItemID    int64     `json:"item_id"`
	MediaType string    `gorm:"size:8" json:"media_type"`
	Title     string    `json:"title"`
	Rating    *float64  `json:"rating,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}

// Recommendation is an item one friend suggests to another.
type Recommendation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID string    `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID   string    `gorm:"type:uuid;not null;index" json:"to_user_id"`
	ItemID     int64     `gorm:"not null" json:"item_id"`
	MediaType  string    `gorm:"size:8;not null" json:"media_type"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path,omitempty"`
	Message    string    `json:"message,omitempty"`
	Seen       bool      `gorm:"default:false" json:"seen"`
	CreatedAt  time.Time `json:"created_at"`

	FromUser *User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserCollection struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_collection_user_name" json:"user_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_collection_user_name" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []CollectionItem `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

func (c *UserCollection) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (UserCollection) TableName() string {
	return "user_collections"
}

// CollectionItem is the junction row between a collection and a media item.
type CollectionItem struct {
	CollectionID string    `gorm:"type:uuid;primaryKey" json:"collection_id"`
	ItemID       int64     `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	MediaType    string    `gorm:"primaryKey;size:8" json:"media_type"`
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	AddedAt      time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (CollectionItem) TableName() string {
	return "collection_items"
}

// CollectionSummary is a collection with its item count, for list views.
type CollectionSummary struct {
	UserCollection
	ItemCount int64 `json:"item_count"`
}

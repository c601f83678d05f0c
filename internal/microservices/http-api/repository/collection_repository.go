package repository

import (
	"context"
	"fmt"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(ctx context.Context, c *models.UserCollection) error
	Get(ctx context.Context, userID, id string) (*models.UserCollection, error)
	ListWithCounts(ctx context.Context, userID string) ([]models.CollectionSummary, error)
	Update(ctx context.Context, c *models.UserCollection) error
	Delete(ctx context.Context, userID, id string) error

	AddItem(ctx context.Context, item *models.CollectionItem) error
	RemoveItem(ctx context.Context, collectionID string, itemID int64, mediaType string) error
	ListItems(ctx context.Context, collectionID string) ([]models.CollectionItem, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, c *models.UserCollection) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create collection: %w", mapError(err))
	}
	return nil
}

func (r *collectionRepository) Get(ctx context.Context, userID, id string) (*models.UserCollection, error) {
	var c models.UserCollection
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&c).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *collectionRepository) ListWithCounts(ctx context.Context, userID string) ([]models.CollectionSummary, error) {
	var out []models.CollectionSummary
	err := r.db.WithContext(ctx).
		Model(&models.UserCollection{}).
		Select("user_collections.*, COUNT(collection_items.item_id) AS item_count").
		Joins("LEFT JOIN collection_items ON collection_items.collection_id = user_collections.id").
		Where("user_collections.user_id = ?", userID).
		Group("user_collections.id").
		Order("user_collections.name").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return out, nil
}

func (r *collectionRepository) Update(ctx context.Context, c *models.UserCollection) error {
	err := r.db.WithContext(ctx).
		Model(c).
		Select("name", "description").
		Updates(c).Error
	if err != nil {
		return fmt.Errorf("update collection: %w", mapError(err))
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&models.UserCollection{})
		if res.Error != nil {
			return fmt.Errorf("delete collection: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionItem{}).Error; err != nil {
			return fmt.Errorf("delete collection items: %w", err)
		}
		return nil
	})
}

func (r *collectionRepository) AddItem(ctx context.Context, item *models.CollectionItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("add collection item: %w", mapError(err))
	}
	return nil
}

func (r *collectionRepository) RemoveItem(ctx context.Context, collectionID string, itemID int64, mediaType string) error {
	res := r.db.WithContext(ctx).
		Where("collection_id = ? AND item_id = ? AND media_type = ?", collectionID, itemID, mediaType).
		Delete(&models.CollectionItem{})
	if res.Error != nil {
		return fmt.Errorf("remove collection item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *collectionRepository) ListItems(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	var items []models.CollectionItem
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("added_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list collection items: %w", err)
	}
	return items, nil
}

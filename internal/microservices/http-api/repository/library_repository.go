package repository

import (
	"context"
	"fmt"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LibraryRepository covers the three status buckets. Every lookup is keyed by
// (user_id, id, media_type).
type LibraryRepository interface {
	GetWatched(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchedItem, error)
	ListWatched(ctx context.Context, userID string) ([]models.WatchedItem, error)
	// DeleteWatched removes the watched row together with its rewatch log and
	// returns the timestamps of the removed rewatch entries.
	DeleteWatched(ctx context.Context, userID string, id int64, mediaType string) ([]time.Time, error)
	UpdateRating(ctx context.Context, userID string, id int64, mediaType string, rating *float64) error
	// RecordWatch saves the watched row, appends the optional rewatch entry and
	// clears the item from the planned and watching buckets in one transaction.
	RecordWatch(ctx context.Context, item *models.WatchedItem, rewatch *models.RewatchEntry) error

	GetPlanned(ctx context.Context, userID string, id int64, mediaType string) (*models.PlannedItem, error)
	ListPlanned(ctx context.Context, userID string) ([]models.PlannedItem, error)
	AddPlanned(ctx context.Context, item *models.PlannedItem) error
	DeletePlanned(ctx context.Context, userID string, id int64, mediaType string) error

	GetWatching(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchingItem, error)
	ListWatching(ctx context.Context, userID string) ([]models.WatchingItem, error)
	// MoveToWatching inserts the watching row and drops any planned row for the item.
	MoveToWatching(ctx context.Context, item *models.WatchingItem) error
	DeleteWatching(ctx context.Context, userID string, id int64, mediaType string) error
	// ListWatchingShows returns TV shows in every user's watching bucket.
	ListWatchingShows(ctx context.Context) ([]models.WatchingItem, error)
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

const itemKey = "user_id = ? AND id = ? AND media_type = ?"

func (r *libraryRepository) GetWatched(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchedItem, error) {
	var item models.WatchedItem
	if err := r.db.WithContext(ctx).Where(itemKey, userID, id, mediaType).First(&item).Error; err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *libraryRepository) ListWatched(ctx context.Context, userID string) ([]models.WatchedItem, error) {
	var items []models.WatchedItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_watched DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list watched items: %w", err)
	}
	return items, nil
}

func (r *libraryRepository) DeleteWatched(ctx context.Context, userID string, id int64, mediaType string) ([]time.Time, error) {
	var removed []time.Time
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(itemKey, userID, id, mediaType).Delete(&models.WatchedItem{})
		if res.Error != nil {
			return fmt.Errorf("delete watched item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var entries []models.RewatchEntry
		if err := tx.Where("user_id = ? AND item_id = ? AND media_type = ?", userID, id, mediaType).Find(&entries).Error; err != nil {
			return fmt.Errorf("load rewatch log: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Delete(&entries).Error; err != nil {
			return fmt.Errorf("delete rewatch log: %w", err)
		}
		for _, e := range entries {
			removed = append(removed, e.WatchedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *libraryRepository) UpdateRating(ctx context.Context, userID string, id int64, mediaType string, rating *float64) error {
	res := r.db.WithContext(ctx).
		Model(&models.WatchedItem{}).
		Where(itemKey, userID, id, mediaType).
		Update("user_rating", rating)
	if res.Error != nil {
		return fmt.Errorf("update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *libraryRepository) RecordWatch(ctx context.Context, item *models.WatchedItem, rewatch *models.RewatchEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(item).Error; err != nil {
			return fmt.Errorf("save watched item: %w", err)
		}
		if rewatch != nil {
			if err := tx.Create(rewatch).Error; err != nil {
				return fmt.Errorf("append rewatch entry: %w", err)
			}
		}
		key := []any{item.UserID, item.ID, item.MediaType}
		if err := tx.Where(itemKey, key...).Delete(&models.PlannedItem{}).Error; err != nil {
			return fmt.Errorf("clear planned item: %w", err)
		}
		if err := tx.Where(itemKey, key...).Delete(&models.WatchingItem{}).Error; err != nil {
			return fmt.Errorf("clear watching item: %w", err)
		}
		return nil
	})
}

func (r *libraryRepository) GetPlanned(ctx context.Context, userID string, id int64, mediaType string) (*models.PlannedItem, error) {
	var item models.PlannedItem
	if err := r.db.WithContext(ctx).Where(itemKey, userID, id, mediaType).First(&item).Error; err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *libraryRepository) ListPlanned(ctx context.Context, userID string) ([]models.PlannedItem, error) {
	var items []models.PlannedItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("added_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list planned items: %w", err)
	}
	return items, nil
}

func (r *libraryRepository) AddPlanned(ctx context.Context, item *models.PlannedItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("add planned item: %w", mapError(err))
	}
	return nil
}

func (r *libraryRepository) DeletePlanned(ctx context.Context, userID string, id int64, mediaType string) error {
	return r.deleteOne(ctx, &models.PlannedItem{}, userID, id, mediaType)
}

func (r *libraryRepository) GetWatching(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchingItem, error) {
	var item models.WatchingItem
	if err := r.db.WithContext(ctx).Where(itemKey, userID, id, mediaType).First(&item).Error; err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *libraryRepository) ListWatching(ctx context.Context, userID string) ([]models.WatchingItem, error) {
	var items []models.WatchingItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("started_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list watching items: %w", err)
	}
	return items, nil
}

func (r *libraryRepository) MoveToWatching(ctx context.Context, item *models.WatchingItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("add watching item: %w", mapError(err))
		}
		if err := tx.Where(itemKey, item.UserID, item.ID, item.MediaType).Delete(&models.PlannedItem{}).Error; err != nil {
			return fmt.Errorf("clear planned item: %w", err)
		}
		return nil
	})
}

func (r *libraryRepository) DeleteWatching(ctx context.Context, userID string, id int64, mediaType string) error {
	return r.deleteOne(ctx, &models.WatchingItem{}, userID, id, mediaType)
}

func (r *libraryRepository) ListWatchingShows(ctx context.Context) ([]models.WatchingItem, error) {
	var items []models.WatchingItem
	err := r.db.WithContext(ctx).
		Where("media_type = ?", models.MediaTypeTV).
		Order("user_id, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list watching shows: %w", err)
	}
	return items, nil
}

func (r *libraryRepository) deleteOne(ctx context.Context, model any, userID string, id int64, mediaType string) error {
	res := r.db.WithContext(ctx).Where(itemKey, userID, id, mediaType).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %T: %w", model, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

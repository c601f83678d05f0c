package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RewatchRepository persists the append-only rewatch log.
type RewatchRepository interface {
	// Log appends the entry and bumps the parent watched item's watch_count.
	Log(ctx context.Context, entry *models.RewatchEntry) error
	Get(ctx context.Context, userID string, id int64) (*models.RewatchEntry, error)
	ListForItem(ctx context.Context, userID string, itemID int64, mediaType string) ([]models.RewatchEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.RewatchEntry, error)
	// Delete removes the entry and decrements watch_count, never below 1.
	Delete(ctx context.Context, userID string, id int64) error
	// MostRewatchedBetween groups entries in [start, end] by item and returns
	// the highest count, or nil when there are none.
	MostRewatchedBetween(ctx context.Context, userID string, start, end time.Time) (*models.RewatchCount, error)
}

type rewatchRepository struct {
	db *gorm.DB
}

func NewRewatchRepository(db *gorm.DB) RewatchRepository {
	return &rewatchRepository{db: db}
}

func (r *rewatchRepository) Log(ctx context.Context, entry *models.RewatchEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WatchedItem{}).
			Where(itemKey, entry.UserID, entry.ItemID, entry.MediaType).
			Update("watch_count", gorm.Expr("watch_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("increment watch count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create rewatch entry: %w", err)
		}
		return nil
	})
}

func (r *rewatchRepository) Get(ctx context.Context, userID string, id int64) (*models.RewatchEntry, error) {
	var entry models.RewatchEntry
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&entry).Error; err != nil {
		return nil, mapError(err)
	}
	return &entry, nil
}

func (r *rewatchRepository) ListForItem(ctx context.Context, userID string, itemID int64, mediaType string) ([]models.RewatchEntry, error) {
	var entries []models.RewatchEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND media_type = ?", userID, itemID, mediaType).
		Order("watched_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list rewatches: %w", err)
	}
	return entries, nil
}

func (r *rewatchRepository) ListByUser(ctx context.Context, userID string) ([]models.RewatchEntry, error) {
	var entries []models.RewatchEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list rewatches: %w", err)
	}
	return entries, nil
}

func (r *rewatchRepository) Delete(ctx context.Context, userID string, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.RewatchEntry
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&entry).Error; err != nil {
			return mapError(err)
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return fmt.Errorf("delete rewatch entry: %w", err)
		}
		err := tx.Model(&models.WatchedItem{}).
			Where(itemKey, entry.UserID, entry.ItemID, entry.MediaType).
			Update("watch_count", gorm.Expr("GREATEST(watch_count - 1, 1)")).Error
		if err != nil {
			return fmt.Errorf("decrement watch count: %w", err)
		}
		return nil
	})
}

// exclusiveEnd turns an inclusive millisecond bound into an exclusive one, so
// sub-millisecond timestamps inside the last millisecond still match.
func exclusiveEnd(end time.Time) time.Time {
	return end.Truncate(time.Millisecond).Add(time.Millisecond)
}

func (r *rewatchRepository) MostRewatchedBetween(ctx context.Context, userID string, start, end time.Time) (*models.RewatchCount, error) {
	var row models.RewatchCount
	err := r.db.WithContext(ctx).
		Model(&models.RewatchEntry{}).
		Select("item_id, media_type, MAX(title) AS title, COUNT(*) AS count").
		Where("user_id = ? AND watched_at >= ? AND watched_at < ?", userID, start, exclusiveEnd(end)).
		Group("item_id, media_type").
		Order("count DESC, item_id ASC").
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query most rewatched: %w", err)
	}
	return &row, nil
}

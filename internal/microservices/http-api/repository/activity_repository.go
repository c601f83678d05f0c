package repository

import (
	"context"
	"fmt"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	// Feed returns activities by any of userIDs, newest first, strictly older
	// than before when before is non-zero.
	Feed(ctx context.Context, userIDs []string, before time.Time, limit int) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (r *activityRepository) Feed(ctx context.Context, userIDs []string, before time.Time, limit int) ([]models.Activity, error) {
	if len(userIDs) == 0 {
		return []models.Activity{}, nil
	}
	q := r.db.WithContext(ctx).Where("user_id IN ?", userIDs)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	var out []models.Activity
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return out, nil
}

package repository

import (
	"context"
	"fmt"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RecommendationRepository stores friend-to-friend suggestions.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	ListReceived(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error)
	MarkSeen(ctx context.Context, userID string, id int64) error
	Delete(ctx context.Context, userID string, id int64) error
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}
	return nil
}

func (r *recommendationRepository) ListReceived(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error) {
	q := r.db.WithContext(ctx).Preload("FromUser").Where("to_user_id = ?", userID)
	if unseenOnly {
		q = q.Where("seen = false")
	}
	var out []models.Recommendation
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return out, nil
}

func (r *recommendationRepository) MarkSeen(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ? AND to_user_id = ?", id, userID).
		Update("seen", true)
	if res.Error != nil {
		return fmt.Errorf("mark recommendation seen: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete lets either the sender or the recipient remove a recommendation.
func (r *recommendationRepository) Delete(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND (to_user_id = ? OR from_user_id = ?)", id, userID, userID).
		Delete(&models.Recommendation{})
	if res.Error != nil {
		return fmt.Errorf("delete recommendation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository persists yearly summary rows keyed by (user_id, year).
type StatsRepository interface {
	// Upsert inserts the row or replaces every column of an existing one.
	Upsert(ctx context.Context, stats *models.YearlyStats) error
	Get(ctx context.Context, userID string, year int) (*models.YearlyStats, error)
	ListYears(ctx context.Context, userID string) ([]int, error)
	Delete(ctx context.Context, userID string, years ...int) error
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Upsert(ctx context.Context, stats *models.YearlyStats) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(stats).Error; err != nil {
		return fmt.Errorf("upsert yearly stats: %w", err)
	}
	return nil
}

func (r *statsRepository) Get(ctx context.Context, userID string, year int) (*models.YearlyStats, error) {
	var stats models.YearlyStats
	if err := r.db.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&stats).Error; err != nil {
		return nil, mapError(err)
	}
	return &stats, nil
}

func (r *statsRepository) ListYears(ctx context.Context, userID string) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&models.YearlyStats{}).
		Where("user_id = ?", userID).
		Order("year DESC").
		Pluck("year", &years).Error
	if err != nil {
		return nil, fmt.Errorf("list stats years: %w", err)
	}
	return years, nil
}

// Delete drops stored rows so the next read recomputes them.
func (r *statsRepository) Delete(ctx context.Context, userID string, years ...int) error {
	if len(years) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year IN ?", userID, years).
		Delete(&models.YearlyStats{}).Error
	if err != nil {
		return fmt.Errorf("delete yearly stats: %w", err)
	}
	return nil
}

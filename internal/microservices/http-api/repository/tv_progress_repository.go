package repository

import (
	"context"
	"fmt"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TvProgressRepository stores per-episode flags and update-check snapshots.
type TvProgressRepository interface {
	Upsert(ctx context.Context, rows []models.TvShowProgress) error
	ListForShow(ctx context.Context, userID string, showID int64) ([]models.TvShowProgress, error)
	ListForSeason(ctx context.Context, userID string, showID int64, season int) ([]models.TvShowProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.TvShowProgress, error)

	GetSnapshot(ctx context.Context, userID string, showID int64) (*models.TvShowSnapshot, error)
	SaveSnapshot(ctx context.Context, snap *models.TvShowSnapshot) error
}

type tvProgressRepository struct {
	db *gorm.DB
}

func NewTvProgressRepository(db *gorm.DB) TvProgressRepository {
	return &tvProgressRepository{db: db}
}

func (r *tvProgressRepository) Upsert(ctx context.Context, rows []models.TvShowProgress) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "show_id"}, {Name: "season"}, {Name: "episode"}},
			DoUpdates: clause.AssignmentColumns([]string{"watched", "watched_at", "runtime"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert episode progress: %w", err)
	}
	return nil
}

func (r *tvProgressRepository) ListForShow(ctx context.Context, userID string, showID int64) ([]models.TvShowProgress, error) {
	var rows []models.TvShowProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND show_id = ?", userID, showID).
		Order("season, episode").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list show progress: %w", err)
	}
	return rows, nil
}

func (r *tvProgressRepository) ListForSeason(ctx context.Context, userID string, showID int64, season int) ([]models.TvShowProgress, error) {
	var rows []models.TvShowProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND show_id = ? AND season = ?", userID, showID, season).
		Order("episode").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list season progress: %w", err)
	}
	return rows, nil
}

func (r *tvProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.TvShowProgress, error) {
	var rows []models.TvShowProgress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list episode progress: %w", err)
	}
	return rows, nil
}

func (r *tvProgressRepository) GetSnapshot(ctx context.Context, userID string, showID int64) (*models.TvShowSnapshot, error) {
	var snap models.TvShowSnapshot
	if err := r.db.WithContext(ctx).Where("user_id = ? AND show_id = ?", userID, showID).First(&snap).Error; err != nil {
		return nil, mapError(err)
	}
	return &snap, nil
}

func (r *tvProgressRepository) SaveSnapshot(ctx context.Context, snap *models.TvShowSnapshot) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(snap).Error; err != nil {
		return fmt.Errorf("save show snapshot: %w", err)
	}
	return nil
}

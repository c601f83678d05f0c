package repository

import (
	"context"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository handles database operations for refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, refreshToken *models.RefreshToken) error
	FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, tokenID string) error
	Rotate(ctx context.Context, oldID, newID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, refreshToken *models.RefreshToken) error {
	return mapError(r.db.WithContext(ctx).Create(refreshToken).Error)
}

// FindByToken looks up the refresh token by its token string
func (r *refreshTokenRepository) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", tokenString).First(&refreshToken).Error; err != nil {
		return nil, mapError(err)
	}
	return &refreshToken, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = false", tokenID).
		Updates(map[string]any{"revoked": true, "revoked_at": time.Now()}).Error
}

// Rotate revokes oldID and links it to newID. It fails with ErrNotFound when
// oldID was already revoked, so two concurrent refreshes cannot both succeed.
func (r *refreshTokenRepository) Rotate(ctx context.Context, oldID, newID string) error {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = false", oldID).
		Updates(map[string]any{"revoked": true, "revoked_at": time.Now(), "replaced_by": newID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = false", userID).
		Updates(map[string]any{"revoked": true, "revoked_at": time.Now()}).Error
}

// DeleteExpired removes tokens that are revoked or past their expiry.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("revoked = true OR expires_at < ?", now).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

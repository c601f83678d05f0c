package repository

import (
	"context"
	"fmt"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// FriendshipRepository owns friend requests and the symmetric friendship rows.
type FriendshipRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id int64) (*models.FriendRequest, error)
	// PendingBetween finds a pending request in either direction.
	PendingBetween(ctx context.Context, a, b string) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	// Accept marks the request accepted and writes both friendship rows atomically.
	Accept(ctx context.Context, req *models.FriendRequest, at time.Time) error
	SetStatus(ctx context.Context, id int64, status string, at time.Time) error
	DeleteRequest(ctx context.Context, id int64) error

	AreFriends(ctx context.Context, a, b string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]models.Friendship, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	// Remove deletes both directions; ErrNotFound if they were not friends.
	Remove(ctx context.Context, a, b string) error
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create friend request: %w", mapError(err))
	}
	return nil
}

func (r *friendshipRepository) GetRequest(ctx context.Context, id int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &req, nil
}

func (r *friendshipRepository) PendingBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FriendRequestPending).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &req, nil
}

func (r *friendshipRepository) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return reqs, nil
}

func (r *friendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("ToUser").
		Where("from_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return reqs, nil
}

func (r *friendshipRepository) Accept(ctx context.Context, req *models.FriendRequest, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, models.FriendRequestPending).
			Updates(map[string]any{"status": models.FriendRequestAccepted, "responded_at": at})
		if res.Error != nil {
			return fmt.Errorf("accept friend request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		rows := []models.Friendship{
			{UserID: req.FromUserID, FriendID: req.ToUserID, CreatedAt: at},
			{UserID: req.ToUserID, FriendID: req.FromUserID, CreatedAt: at},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create friendship: %w", mapError(err))
		}
		return nil
	})
}

func (r *friendshipRepository) SetStatus(ctx context.Context, id int64, status string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.FriendRequestPending).
		Updates(map[string]any{"status": status, "responded_at": at})
	if res.Error != nil {
		return fmt.Errorf("update friend request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) DeleteRequest(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.FriendRequest{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete friend request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return n > 0, nil
}

func (r *friendshipRepository) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return rows, nil
}

func (r *friendshipRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list friend ids: %w", err)
	}
	return ids, nil
}

func (r *friendshipRepository) Remove(ctx context.Context, a, b string) error {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return fmt.Errorf("remove friendship: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

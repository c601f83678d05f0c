package service

import (
	"context"
	"errors"
	"fmt"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

var ErrRecommendationNotFound = errors.New("recommendation not found")

// FriendRecommendationService handles titles friends suggest to each other.
type FriendRecommendationService interface {
	Send(ctx context.Context, fromUserID string, rec models.Recommendation) (*models.Recommendation, error)
	Inbox(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error)
	MarkSeen(ctx context.Context, userID string, id int64) error
	Delete(ctx context.Context, userID string, id int64) error
}

type friendRecommendationService struct {
	repo     repository.RecommendationRepository
	friends  repository.FriendshipRepository
	users    repository.UserRepository
	notifier NotificationSender
	activity ActivityPoster
}

func NewFriendRecommendationService(
	repo repository.RecommendationRepository,
	friends repository.FriendshipRepository,
	users repository.UserRepository,
	notifier NotificationSender,
	activity ActivityPoster,
) FriendRecommendationService {
	return &friendRecommendationService{
		repo:     repo,
		friends:  friends,
		users:    users,
		notifier: notifier,
		activity: activity,
	}
}

func (s *friendRecommendationService) Send(ctx context.Context, fromUserID string, rec models.Recommendation) (*models.Recommendation, error) {
	if !models.ValidMediaType(rec.MediaType) {
		return nil, ErrInvalidMediaType
	}
	if rec.ToUserID == fromUserID {
		return nil, ErrNotFriends
	}
	ok, err := s.friends.AreFriends(ctx, fromUserID, rec.ToUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriends
	}

	rec.ID = 0
	rec.FromUserID = fromUserID
	rec.Seen = false
	if err := s.repo.Create(ctx, &rec); err != nil {
		return nil, err
	}

	fromName := fromUserID
	if u, err := s.users.FindByID(ctx, fromUserID); err == nil {
		fromName = u.Username
	}
	n := &models.Notification{
		UserID:    rec.ToUserID,
		Type:      models.NotificationRecommendation,
		ItemID:    rec.ItemID,
		MediaType: rec.MediaType,
		Title:     rec.Title,
		Message:   fmt.Sprintf("%s recommends %s", fromName, rec.Title),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		logNotifyFailure(ctx, err, n)
	}
	s.activity.Post(ctx, &models.Activity{
		UserID:    fromUserID,
		Username:  fromName,
		Type:      models.ActivityRecommended,
		ItemID:    rec.ItemID,
		MediaType: rec.MediaType,
		Title:     rec.Title,
	})
	return &rec, nil
}

func (s *friendRecommendationService) Inbox(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error) {
	return s.repo.ListReceived(ctx, userID, unseenOnly)
}

func (s *friendRecommendationService) MarkSeen(ctx context.Context, userID string, id int64) error {
	err := s.repo.MarkSeen(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecommendationNotFound
	}
	return err
}

func (s *friendRecommendationService) Delete(ctx context.Context, userID string, id int64) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecommendationNotFound
	}
	return err
}

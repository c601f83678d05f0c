package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrRequestExists   = errors.New("a pending friend request already exists")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotFriends      = errors.New("not friends")
)

type FriendService interface {
	SendRequest(ctx context.Context, fromUserID, toUsername string) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	Accept(ctx context.Context, userID string, requestID int64) error
	Decline(ctx context.Context, userID string, requestID int64) error
	Cancel(ctx context.Context, userID string, requestID int64) error
	ListFriends(ctx context.Context, userID string) ([]models.Friendship, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

type friendService struct {
	repo     repository.FriendshipRepository
	users    repository.UserRepository
	notifier NotificationSender
	now      func() time.Time
}

func NewFriendService(repo repository.FriendshipRepository, users repository.UserRepository, notifier NotificationSender) FriendService {
	return &friendService{repo: repo, users: users, notifier: notifier, now: time.Now}
}

func (s *friendService) SendRequest(ctx context.Context, fromUserID, toUsername string) (*models.FriendRequest, error) {
	to, err := s.users.FindByUsername(ctx, toUsername)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if to.ID == fromUserID {
		return nil, ErrSelfRequest
	}

	friends, err := s.repo.AreFriends(ctx, fromUserID, to.ID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}
	if _, err := s.repo.PendingBetween(ctx, fromUserID, to.ID); err == nil {
		return nil, ErrRequestExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	req := &models.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   to.ID,
		Status:     models.FriendRequestPending,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	fromName := fromUserID
	if from, err := s.users.FindByID(ctx, fromUserID); err == nil {
		fromName = from.Username
	}
	s.notify(ctx, &models.Notification{
		UserID:  to.ID,
		Type:    models.NotificationFriendRequest,
		Title:   "New friend request",
		Message: fmt.Sprintf("%s wants to be your friend", fromName),
	})
	return req, nil
}

func (s *friendService) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.repo.ListIncoming(ctx, userID)
}

func (s *friendService) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.repo.ListOutgoing(ctx, userID)
}

// pending loads a pending request and checks the caller is on the expected side.
func (s *friendService) pending(ctx context.Context, requestID int64, allowed func(*models.FriendRequest) bool) (*models.FriendRequest, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.Status != models.FriendRequestPending || !allowed(req) {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (s *friendService) Accept(ctx context.Context, userID string, requestID int64) error {
	req, err := s.pending(ctx, requestID, func(r *models.FriendRequest) bool { return r.ToUserID == userID })
	if err != nil {
		return err
	}
	if err := s.repo.Accept(ctx, req, s.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrRequestNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrAlreadyFriends
		}
		return err
	}

	name := userID
	if me, err := s.users.FindByID(ctx, userID); err == nil {
		name = me.Username
	}
	s.notify(ctx, &models.Notification{
		UserID:  req.FromUserID,
		Type:    models.NotificationFriendAccepted,
		Title:   "Friend request accepted",
		Message: fmt.Sprintf("%s accepted your friend request", name),
	})
	return nil
}

func (s *friendService) Decline(ctx context.Context, userID string, requestID int64) error {
	if _, err := s.pending(ctx, requestID, func(r *models.FriendRequest) bool { return r.ToUserID == userID }); err != nil {
		return err
	}
	err := s.repo.SetStatus(ctx, requestID, models.FriendRequestDeclined, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (s *friendService) Cancel(ctx context.Context, userID string, requestID int64) error {
	if _, err := s.pending(ctx, requestID, func(r *models.FriendRequest) bool { return r.FromUserID == userID }); err != nil {
		return err
	}
	err := s.repo.DeleteRequest(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (s *friendService) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	return s.repo.ListFriends(ctx, userID)
}

func (s *friendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	err := s.repo.Remove(ctx, userID, friendID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFriends
	}
	return err
}

func (s *friendService) notify(ctx context.Context, n *models.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		logNotifyFailure(ctx, err, n)
	}
}

package service

import (
	"context"
	"errors"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// LiveEvent is the envelope pushed to connected websocket clients.
type LiveEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	LiveEventActivity     = "activity"
	LiveEventNotification = "notification"
)

// Broadcaster delivers live events to the sockets of the given users.
type Broadcaster interface {
	SendToUsers(userIDs []string, event LiveEvent)
}

type NotificationService interface {
	Notify(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	live Broadcaster
}

func NewNotificationService(repo repository.NotificationRepository, live Broadcaster) NotificationService {
	return &notificationService{repo: repo, live: live}
}

func (s *notificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.live != nil {
		s.live.SendToUsers([]string{n.UserID}, LiveEvent{Type: LiveEventNotification, Data: n})
	}
	logging.Ctx(ctx).Debug().Str("user_id", n.UserID).Str("type", n.Type).Msg("notification created")
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	err := s.repo.MarkAsRead(ctx, userID, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func logNotifyFailure(ctx context.Context, err error, n *models.Notification) {
	logging.Ctx(ctx).Warn().Err(err).Str("user_id", n.UserID).Str("type", n.Type).Msg("failed to send notification")
}

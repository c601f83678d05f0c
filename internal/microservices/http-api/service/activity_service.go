package service

import (
	"context"
	"time"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

const (
	feedDefaultLimit = 50
	feedMaxLimit     = 200
)

// ActivityService writes the shared activity log and reads friends' feeds.
type ActivityService interface {
	Post(ctx context.Context, a *models.Activity)
	Feed(ctx context.Context, userID string, limit int, before time.Time) ([]models.Activity, error)
}

type activityService struct {
	repo    repository.ActivityRepository
	friends repository.FriendshipRepository
	users   repository.UserRepository
	live    Broadcaster
}

func NewActivityService(
	repo repository.ActivityRepository,
	friends repository.FriendshipRepository,
	users repository.UserRepository,
	live Broadcaster,
) ActivityService {
	return &activityService{repo: repo, friends: friends, users: users, live: live}
}

// Post never fails the caller: activities are a side channel of the action
// that produced them.
func (s *activityService) Post(ctx context.Context, a *models.Activity) {
	log := logging.Ctx(ctx)
	if a.Username == "" {
		if u, err := s.users.FindByID(ctx, a.UserID); err == nil {
			a.Username = u.Username
		}
	}
	if err := s.repo.Create(ctx, a); err != nil {
		log.Warn().Err(err).Str("type", a.Type).Msg("failed to record activity")
		return
	}
	if s.live == nil {
		return
	}
	friendIDs, err := s.friends.FriendIDs(ctx, a.UserID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load friends for live feed")
		return
	}
	if len(friendIDs) > 0 {
		s.live.SendToUsers(friendIDs, LiveEvent{Type: LiveEventActivity, Data: a})
	}
}

func (s *activityService) Feed(ctx context.Context, userID string, limit int, before time.Time) ([]models.Activity, error) {
	if limit <= 0 {
		limit = feedDefaultLimit
	}
	if limit > feedMaxLimit {
		limit = feedMaxLimit
	}
	friendIDs, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.Feed(ctx, friendIDs, before, limit)
}

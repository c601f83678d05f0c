package service

import (
	"context"
	"errors"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

var ErrRewatchNotFound = errors.New("rewatch entry not found")

// RewatchInput is one extra viewing of an already watched item.
type RewatchInput struct {
	ItemID    int64
	MediaType string
	WatchedAt time.Time
	Rating    *float64
	Minutes   int
}

type RewatchService interface {
	LogRewatch(ctx context.Context, userID string, in RewatchInput) (*models.RewatchEntry, error)
	ListRewatches(ctx context.Context, userID string, itemID int64, mediaType string) ([]models.RewatchEntry, error)
	DeleteRewatch(ctx context.Context, userID string, id int64) error
}

type rewatchService struct {
	repo    repository.RewatchRepository
	library repository.LibraryRepository
	stats   StatsInvalidator
	now     func() time.Time
}

func NewRewatchService(repo repository.RewatchRepository, library repository.LibraryRepository, stats StatsInvalidator) RewatchService {
	return &rewatchService{repo: repo, library: library, stats: stats, now: time.Now}
}

func (s *rewatchService) LogRewatch(ctx context.Context, userID string, in RewatchInput) (*models.RewatchEntry, error) {
	if !models.ValidMediaType(in.MediaType) {
		return nil, ErrInvalidMediaType
	}
	if in.Rating != nil && !ValidRating(*in.Rating) {
		return nil, ErrInvalidRating
	}

	item, err := s.library.GetWatched(ctx, userID, in.ItemID, in.MediaType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotWatched
	}
	if err != nil {
		return nil, err
	}

	if in.WatchedAt.IsZero() {
		in.WatchedAt = s.now()
	}
	if in.Minutes <= 0 {
		in.Minutes = item.Runtime
	}

	entry := &models.RewatchEntry{
		UserID:           userID,
		ItemID:           item.ID,
		MediaType:        item.MediaType,
		Title:            item.Title,
		WatchedAt:        in.WatchedAt,
		Rating:           in.Rating,
		WatchTimeMinutes: in.Minutes,
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotWatched
		}
		return nil, err
	}

	// watch_count feeds movie time in the year of the original watch too
	s.stats.Invalidate(ctx, userID, in.WatchedAt, item.DateWatched)
	return entry, nil
}

func (s *rewatchService) ListRewatches(ctx context.Context, userID string, itemID int64, mediaType string) ([]models.RewatchEntry, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, ErrInvalidMediaType
	}
	return s.repo.ListForItem(ctx, userID, itemID, mediaType)
}

func (s *rewatchService) DeleteRewatch(ctx context.Context, userID string, id int64) error {
	entry, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRewatchNotFound
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRewatchNotFound
		}
		return err
	}
	touched := []time.Time{entry.WatchedAt}
	if item, err := s.library.GetWatched(ctx, userID, entry.ItemID, entry.MediaType); err == nil {
		touched = append(touched, item.DateWatched)
	}
	s.stats.Invalidate(ctx, userID, touched...)
	return nil
}

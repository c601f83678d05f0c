package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cinetrack/internal/logging"
	"cinetrack/internal/metrics"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/worker"
)

// UpdateReport tallies one pass of the new-episode checker.
type UpdateReport struct {
	Checked     int `json:"checked"`
	FirstSeen   int `json:"first_seen"`
	NewEpisodes int `json:"new_episodes"`
	Failed      int `json:"failed"`
}

// NotificationSender persists a notification and pushes it to the user.
type NotificationSender interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// TvShowUpdateService polls shows in watching buckets and notifies users
// when more episodes are available than last time.
type TvShowUpdateService interface {
	CheckAll(ctx context.Context) (*UpdateReport, error)
	Run(ctx context.Context, interval time.Duration)
}

type tvUpdateService struct {
	library  repository.LibraryRepository
	progress repository.TvProgressRepository
	metadata MetadataClient
	notifier NotificationSender
	workers  int
	now      func() time.Time
}

func NewTvShowUpdateService(
	library repository.LibraryRepository,
	progress repository.TvProgressRepository,
	metadata MetadataClient,
	notifier NotificationSender,
	workers int,
) TvShowUpdateService {
	return &tvUpdateService{
		library:  library,
		progress: progress,
		metadata: metadata,
		notifier: notifier,
		workers:  workers,
		now:      time.Now,
	}
}

const (
	checkFirstSeen   = "first_seen"
	checkUnchanged   = "unchanged"
	checkNewEpisodes = "new_episodes"
	checkError       = "error"
)

func (s *tvUpdateService) CheckAll(ctx context.Context) (*UpdateReport, error) {
	shows, err := s.library.ListWatchingShows(ctx)
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{}
	var mu sync.Mutex
	record := func(result string) {
		metrics.TVUpdateChecks.WithLabelValues(result).Inc()
		mu.Lock()
		defer mu.Unlock()
		report.Checked++
		switch result {
		case checkFirstSeen:
			report.FirstSeen++
		case checkNewEpisodes:
			report.NewEpisodes++
		case checkError:
			report.Failed++
		}
	}

	pool := worker.NewPool(ctx, "tv-updates", s.workers)
	pool.Start()
	for _, show := range shows {
		show := show
		pool.Submit(func(ctx context.Context) error {
			result, err := s.checkShow(ctx, show)
			record(result)
			return err
		})
	}
	pool.Wait()

	logging.Info().
		Int("checked", report.Checked).
		Int("new_episodes", report.NewEpisodes).
		Int("failed", report.Failed).
		Msg("tv update pass finished")
	return report, ctx.Err()
}

func (s *tvUpdateService) checkShow(ctx context.Context, show models.WatchingItem) (string, error) {
	details, err := s.metadata.FreshTVDetails(ctx, show.ID)
	if err != nil {
		return checkError, fmt.Errorf("show %d: %w", show.ID, err)
	}

	prev, err := s.progress.GetSnapshot(ctx, show.UserID, show.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return checkError, err
	}

	result := checkUnchanged
	switch {
	case prev == nil:
		result = checkFirstSeen
	case details.NumberOfEpisodes > prev.NumberOfEpisodes:
		result = checkNewEpisodes
		added := details.NumberOfEpisodes - prev.NumberOfEpisodes
		n := &models.Notification{
			UserID:    show.UserID,
			Type:      models.NotificationNewEpisodes,
			ItemID:    show.ID,
			MediaType: models.MediaTypeTV,
			Title:     details.Name,
			Message:   newEpisodesMessage(details.Name, added),
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			return checkError, err
		}
	}

	snap := &models.TvShowSnapshot{
		UserID:           show.UserID,
		ShowID:           show.ID,
		Title:            details.Name,
		NumberOfSeasons:  details.NumberOfSeasons,
		NumberOfEpisodes: details.NumberOfEpisodes,
		LastAirDate:      details.LastAirDate,
		Status:           details.Status,
		CheckedAt:        s.now(),
	}
	if err := s.progress.SaveSnapshot(ctx, snap); err != nil {
		return checkError, err
	}
	return result, nil
}

func newEpisodesMessage(title string, added int) string {
	if added == 1 {
		return fmt.Sprintf("1 new episode of %s is available", title)
	}
	return fmt.Sprintf("%d new episodes of %s are available", added, title)
}

// Run checks immediately and then on every tick until ctx is cancelled.
func (s *tvUpdateService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.CheckAll(ctx); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("tv update pass failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

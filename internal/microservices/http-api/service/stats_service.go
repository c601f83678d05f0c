package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetrack/internal/cache"
	"cinetrack/internal/logging"
	"cinetrack/internal/metrics"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

const minStatsYear = 1900

var ErrInvalidYear = errors.New("year out of range")

// StatsService computes and serves the yearly "year in review" rows.
type StatsService interface {
	CalculateYearlyStats(ctx context.Context, userID string, year int) (*models.YearlyStats, error)
	GetYearlyStats(ctx context.Context, userID string, year int) (*models.YearlyStats, error)
	ListStatsYears(ctx context.Context, userID string) ([]int, error)
	GetLifetimeStats(ctx context.Context, userID string) (*models.YearlyStats, error)
	RecalculateAll(ctx context.Context, userID string) ([]int, error)
	// Invalidate drops the cached and stored rows of the years touched by at.
	Invalidate(ctx context.Context, userID string, at ...time.Time)
}

type statsService struct {
	library  repository.LibraryRepository
	rewatch  repository.RewatchRepository
	progress repository.TvProgressRepository
	repo     repository.StatsRepository
	cache    *cache.Cache
	loc      *time.Location
	now      func() time.Time
}

func NewStatsService(
	library repository.LibraryRepository,
	rewatch repository.RewatchRepository,
	progress repository.TvProgressRepository,
	repo repository.StatsRepository,
	c *cache.Cache,
	loc *time.Location,
) StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &statsService{
		library:  library,
		rewatch:  rewatch,
		progress: progress,
		repo:     repo,
		cache:    c,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *statsService) validateYear(year int) error {
	if year < minStatsYear || year > s.now().In(s.loc).Year()+1 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

// loadHistory fetches the whole history; filtering happens in memory.
func (s *statsService) loadHistory(ctx context.Context, userID string) (statsInput, error) {
	var in statsInput
	var err error
	if in.Watched, err = s.library.ListWatched(ctx, userID); err != nil {
		return in, err
	}
	if in.Rewatches, err = s.rewatch.ListByUser(ctx, userID); err != nil {
		return in, err
	}
	if in.Episodes, err = s.progress.ListByUser(ctx, userID); err != nil {
		return in, err
	}
	return in, nil
}

func (s *statsService) CalculateYearlyStats(ctx context.Context, userID string, year int) (stats *models.YearlyStats, err error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.ObserveStats(start, err) }()

	in, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, to := YearBounds(year, s.loc)
	if in.MostRewatched, err = s.rewatch.MostRewatchedBetween(ctx, userID, from, to); err != nil {
		return nil, err
	}

	stats = aggregate(userID, year, from, to, in, s.now())
	if err = s.repo.Upsert(ctx, stats); err != nil {
		return nil, err
	}
	if cerr := s.cache.SetJSON(ctx, cache.StatsKey(userID, year), stats, 0); cerr != nil {
		logging.Ctx(ctx).Warn().Err(cerr).Msg("failed to cache yearly stats")
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Int("year", year).
		Int("total_minutes", stats.TotalWatchTimeMinutes).
		Msg("yearly stats calculated")
	return stats, nil
}

func (s *statsService) GetYearlyStats(ctx context.Context, userID string, year int) (*models.YearlyStats, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}

	var cached models.YearlyStats
	hit, err := s.cache.GetJSON(ctx, cache.StatsKey(userID, year), &cached)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("stats cache read failed")
	}
	if hit {
		return &cached, nil
	}

	stored, err := s.repo.Get(ctx, userID, year)
	switch {
	case err == nil:
		if cerr := s.cache.SetJSON(ctx, cache.StatsKey(userID, year), stored, 0); cerr != nil {
			logging.Ctx(ctx).Warn().Err(cerr).Msg("failed to cache yearly stats")
		}
		return stored, nil
	case errors.Is(err, repository.ErrNotFound):
		return s.CalculateYearlyStats(ctx, userID, year)
	default:
		return nil, err
	}
}

func (s *statsService) ListStatsYears(ctx context.Context, userID string) ([]int, error) {
	in, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return activeYears(in, s.loc), nil
}

func (s *statsService) GetLifetimeStats(ctx context.Context, userID string) (stats *models.YearlyStats, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStats(start, err) }()

	in, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, to := lifetimeBounds(s.loc)
	if in.MostRewatched, err = s.rewatch.MostRewatchedBetween(ctx, userID, from, to); err != nil {
		return nil, err
	}
	return aggregate(userID, 0, from, to, in, s.now()), nil
}

func (s *statsService) RecalculateAll(ctx context.Context, userID string) ([]int, error) {
	years, err := s.ListStatsYears(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := make([]int, 0, len(years))
	for _, y := range years {
		if s.validateYear(y) != nil {
			logging.Ctx(ctx).Warn().Int("year", y).Str("user_id", userID).Msg("skipping out of range year")
			continue
		}
		if _, err := s.CalculateYearlyStats(ctx, userID, y); err != nil {
			return done, fmt.Errorf("recalculate %d: %w", y, err)
		}
		done = append(done, y)
	}
	return done, nil
}

func (s *statsService) Invalidate(ctx context.Context, userID string, at ...time.Time) {
	seen := map[int]bool{}
	var years []int
	for _, t := range at {
		y := t.In(s.loc).Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, y := range years {
		if err := s.cache.Delete(ctx, cache.StatsKey(userID, y)); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("year", y).Msg("failed to evict stats cache")
		}
	}
	if err := s.repo.Delete(ctx, userID, years...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to drop stale yearly stats")
	}
}

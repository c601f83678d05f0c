package service

import (
	"context"
	"testing"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type statsFixture struct {
	library  *MockLibraryRepository
	rewatch  *MockRewatchRepository
	progress *MockTvProgressRepository
	repo     *MockStatsRepository
	svc      *statsService
}

func newStatsFixture(now time.Time) *statsFixture {
	f := &statsFixture{
		library:  new(MockLibraryRepository),
		rewatch:  new(MockRewatchRepository),
		progress: new(MockTvProgressRepository),
		repo:     new(MockStatsRepository),
	}
	f.svc = NewStatsService(f.library, f.rewatch, f.progress, f.repo, nil, time.UTC).(*statsService)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *statsFixture) history(watched []models.WatchedItem) {
	f.library.On("ListWatched", "u1").Return(watched, nil)
	f.rewatch.On("ListByUser", "u1").Return([]models.RewatchEntry{}, nil)
	f.progress.On("ListByUser", "u1").Return([]models.TvShowProgress{}, nil)
}

func TestStatsService_CalculateYearlyStats(t *testing.T) {
	now := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	f := newStatsFixture(now)
	f.history([]models.WatchedItem{
		watched(1, models.MediaTypeMovie, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 120),
		watched(2, models.MediaTypeMovie, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), 90),
	})
	f.rewatch.On("MostRewatchedBetween", "u1", mock.Anything, mock.Anything).Return(nil, nil)
	f.repo.On("Upsert", mock.AnythingOfType("*models.YearlyStats")).Return(nil)

	stats, err := f.svc.CalculateYearlyStats(context.Background(), "u1", 2024)

	require.NoError(t, err)
	assert.Equal(t, 2024, stats.Year)
	assert.Equal(t, 1, stats.TotalMoviesWatched)
	assert.Equal(t, 120, stats.TotalWatchTimeMinutes)
	assert.Equal(t, now, stats.CalculatedAt)
	f.repo.AssertExpectations(t)
}

func TestStatsService_RejectsOutOfRangeYear(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))

	for _, year := range []int{1899, 2026} {
		_, err := f.svc.GetYearlyStats(context.Background(), "u1", year)
		assert.ErrorIs(t, err, ErrInvalidYear)
	}
	f.library.AssertNotCalled(t, "ListWatched", mock.Anything)
}

func TestStatsService_GetYearlyStats_Stored(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	stored := &models.YearlyStats{UserID: "u1", Year: 2023, TotalMoviesWatched: 7}
	f.repo.On("Get", "u1", 2023).Return(stored, nil)

	stats, err := f.svc.GetYearlyStats(context.Background(), "u1", 2023)

	require.NoError(t, err)
	assert.Same(t, stored, stats)
	f.library.AssertNotCalled(t, "ListWatched", mock.Anything)
}

func TestStatsService_GetYearlyStats_ComputesWhenMissing(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	f.repo.On("Get", "u1", 2024).Return(nil, repository.ErrNotFound)
	f.history([]models.WatchedItem{})
	f.rewatch.On("MostRewatchedBetween", "u1", mock.Anything, mock.Anything).Return(nil, nil)
	f.repo.On("Upsert", mock.AnythingOfType("*models.YearlyStats")).Return(nil)

	stats, err := f.svc.GetYearlyStats(context.Background(), "u1", 2024)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalWatchTimeMinutes)
	f.repo.AssertCalled(t, "Upsert", mock.Anything)
}

func TestStatsService_GetLifetimeStats(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	f.history([]models.WatchedItem{
		watched(1, models.MediaTypeMovie, time.Date(2001, 2, 1, 0, 0, 0, 0, time.UTC), 100),
		watched(2, models.MediaTypeMovie, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 50),
	})
	f.rewatch.On("MostRewatchedBetween", "u1", mock.Anything, mock.Anything).Return(nil, nil)

	stats, err := f.svc.GetLifetimeStats(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Year)
	assert.Equal(t, 150, stats.TotalWatchTimeMinutes)
	f.repo.AssertNotCalled(t, "Upsert", mock.Anything)
}

func TestStatsService_RecalculateAll(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	f.history([]models.WatchedItem{
		watched(1, models.MediaTypeMovie, time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC), 100),
		watched(2, models.MediaTypeMovie, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 50),
	})
	f.rewatch.On("MostRewatchedBetween", "u1", mock.Anything, mock.Anything).Return(nil, nil)
	f.repo.On("Upsert", mock.AnythingOfType("*models.YearlyStats")).Return(nil)

	years, err := f.svc.RecalculateAll(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2022}, years)
	f.repo.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestStatsService_InvalidateDedupesYears(t *testing.T) {
	f := newStatsFixture(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	f.repo.On("Delete", "u1", []int{2024, 2023}).Return(nil)

	f.svc.Invalidate(context.Background(), "u1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	)

	f.repo.AssertExpectations(t)
}

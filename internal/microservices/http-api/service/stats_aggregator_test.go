package service

import (
	"testing"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watched(id int64, mt string, at time.Time, runtime int) models.WatchedItem {
	return models.WatchedItem{
		UserID:      "u1",
		ID:          id,
		MediaType:   mt,
		Title:       "title",
		Runtime:     runtime,
		WatchCount:  1,
		DateWatched: at,
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 2024, end.Year())
	assert.Equal(t, time.December, end.Month())
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, int64(999), end.UnixMilli()%1000)
}

func TestAggregate_YearBoundaryIsInclusive(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	in := statsInput{Watched: []models.WatchedItem{
		watched(1, models.MediaTypeMovie, time.Date(2024, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), 100),
		watched(2, models.MediaTypeMovie, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 100),
		watched(3, models.MediaTypeMovie, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100),
		watched(4, models.MediaTypeMovie, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), 100),
	}}

	stats := aggregate("u1", 2024, start, end, in, time.Now())

	assert.Equal(t, 2, stats.TotalMoviesWatched)
	months := stats.Months()
	assert.Equal(t, 1, months[0])
	assert.Equal(t, 1, months[11])
}

func TestAggregate_MonthlyBreakdownSumsToEvents(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	in := statsInput{
		Watched: []models.WatchedItem{
			watched(1, models.MediaTypeMovie, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), 90),
			watched(2, models.MediaTypeTV, time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), 45),
			watched(3, models.MediaTypeMovie, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), 120),
		},
		Rewatches: []models.RewatchEntry{
			{ItemID: 1, MediaType: models.MediaTypeMovie, WatchedAt: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), WatchTimeMinutes: 90},
			{ItemID: 1, MediaType: models.MediaTypeMovie, WatchedAt: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), WatchTimeMinutes: 90},
		},
	}

	stats := aggregate("u1", 2024, start, end, in, time.Now())
	months := stats.Months()

	require.Len(t, months, 12)
	assert.Equal(t, 4, sum(months))
	assert.Equal(t, 2, months[2])
	assert.Equal(t, 1, months[6])
	assert.Equal(t, 1, months[7])
	assert.Equal(t, 1, stats.TotalRewatches)
	assert.Equal(t, 1, stats.TotalShowsWatched)
}

func TestAggregate_WatchTime(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	m1 := watched(1, models.MediaTypeMovie, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 100)
	m1.WatchCount = 3
	m2 := watched(2, models.MediaTypeMovie, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), 80)
	m2.WatchCount = 0
	in := statsInput{
		Watched: []models.WatchedItem{m1, m2},
		Rewatches: []models.RewatchEntry{
			{ItemID: 1, MediaType: models.MediaTypeMovie, WatchedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), WatchTimeMinutes: 100},
		},
	}

	stats := aggregate("u1", 2024, start, end, in, time.Now())

	assert.Equal(t, 300, stats.MovieWatchTimeMinutes)
	assert.Equal(t, 100, stats.RewatchTimeMinutes)
	assert.Equal(t, 400, stats.TotalWatchTimeMinutes)
	require.NotNil(t, stats.LongestMovieID)
	assert.Equal(t, int64(1), *stats.LongestMovieID)
	assert.Equal(t, 100, stats.LongestMovieRuntime)
}

func TestAggregate_Favorites(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := watched(1, models.MediaTypeMovie, at, 100)
	a.GenreIDs = "28,18"
	a.TopCast = "Zoe, Adam"
	a.Director = "Nolan"
	b := watched(2, models.MediaTypeMovie, at, 100)
	b.GenreIDs = "18,35"
	b.TopCast = "Zoe"
	b.Director = "Villeneuve"
	c := watched(3, models.MediaTypeTV, at, 0)
	c.GenreIDs = "35"
	c.TopCast = "Adam"

	stats := aggregate("u1", 2024, start, end, statsInput{Watched: []models.WatchedItem{a, b, c}}, at)

	// 18 and 35 both appear twice; the lower id wins
	require.NotNil(t, stats.FavoriteGenreID)
	assert.Equal(t, 18, *stats.FavoriteGenreID)
	assert.Equal(t, 2, stats.FavoriteGenreCount)
	require.NotNil(t, stats.FavoriteActor)
	assert.Equal(t, "Adam", *stats.FavoriteActor)
	require.NotNil(t, stats.FavoriteDirector)
	assert.Equal(t, "Nolan", *stats.FavoriteDirector)
}

func TestAggregate_Ratings(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := watched(5, models.MediaTypeMovie, at, 100)
	a.UserRating = ptr(9.0)
	b := watched(3, models.MediaTypeTV, at, 0)
	b.UserRating = ptr(9.0)
	c := watched(7, models.MediaTypeMovie, at, 100)
	c.UserRating = ptr(7.5)
	d := watched(8, models.MediaTypeMovie, at, 100)

	stats := aggregate("u1", 2024, start, end, statsInput{Watched: []models.WatchedItem{a, b, c, d}}, at)

	require.NotNil(t, stats.TopRatedID)
	assert.Equal(t, int64(3), *stats.TopRatedID)
	assert.Equal(t, models.MediaTypeTV, *stats.TopRatedMediaType)
	assert.Equal(t, 9.0, *stats.TopRatedRating)
	assert.Equal(t, 8.5, stats.AverageRating)
}

func TestAggregate_EmptyYear(t *testing.T) {
	start, end := YearBounds(2020, time.UTC)

	stats := aggregate("u1", 2020, start, end, statsInput{}, time.Now())

	assert.Zero(t, stats.TotalWatchTimeMinutes)
	assert.Nil(t, stats.FavoriteGenreID)
	assert.Nil(t, stats.TopRatedID)
	assert.Nil(t, stats.MostRewatchedID)
	assert.Equal(t, make([]int, 12), stats.Months())
}

func TestAggregate_EpisodesAndMostRewatched(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	in2024 := time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC)
	in2023 := time.Date(2023, 4, 4, 0, 0, 0, 0, time.UTC)
	in := statsInput{
		Episodes: []models.TvShowProgress{
			{ShowID: 1, Season: 1, Episode: 1, Watched: true, WatchedAt: &in2024},
			{ShowID: 1, Season: 1, Episode: 2, Watched: true, WatchedAt: &in2023},
			{ShowID: 1, Season: 1, Episode: 3, Watched: false},
		},
		MostRewatched: &models.RewatchCount{ItemID: 9, MediaType: models.MediaTypeMovie, Title: "Heat", Count: 4},
	}

	stats := aggregate("u1", 2024, start, end, in, time.Now())

	assert.Equal(t, 1, stats.TotalEpisodesWatched)
	require.NotNil(t, stats.MostRewatchedID)
	assert.Equal(t, int64(9), *stats.MostRewatchedID)
	assert.Equal(t, "Heat", *stats.MostRewatchedTitle)
	assert.Equal(t, 4, stats.MostRewatchedCount)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := watched(1, models.MediaTypeMovie, at, 100)
	a.GenreIDs = "12,14"
	a.UserRating = ptr(6.5)
	in := statsInput{Watched: []models.WatchedItem{a, watched(2, models.MediaTypeTV, at, 30)}}

	first := aggregate("u1", 2024, start, end, in, time.Now())
	second := aggregate("u1", 2024, start, end, in, time.Now().Add(time.Hour))
	second.CalculatedAt = first.CalculatedAt

	assert.Equal(t, first, second)
}

func TestAggregate_UsesLocationForMonths(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start, end := YearBounds(2024, loc)
	// 23:30 UTC on Jan 31 is already February in UTC+2
	in := statsInput{Watched: []models.WatchedItem{
		watched(1, models.MediaTypeMovie, time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC), 90),
	}}

	stats := aggregate("u1", 2024, start, end, in, time.Now())

	assert.Equal(t, 1, stats.Months()[1])
}

func TestActiveYears(t *testing.T) {
	ep := time.Date(2019, 5, 5, 0, 0, 0, 0, time.UTC)
	in := statsInput{
		Watched: []models.WatchedItem{
			watched(1, models.MediaTypeMovie, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 10),
			watched(2, models.MediaTypeMovie, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10),
		},
		Rewatches: []models.RewatchEntry{{WatchedAt: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)}},
		Episodes:  []models.TvShowProgress{{Watched: true, WatchedAt: &ep}, {Watched: false}},
	}

	assert.Equal(t, []int{2024, 2022, 2019}, activeYears(in, time.UTC))
}

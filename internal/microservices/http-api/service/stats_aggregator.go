package service

import (
	"math"
	"sort"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"github.com/goccy/go-json"
)

// statsInput is the raw history one aggregation pass runs over.
type statsInput struct {
	Watched       []models.WatchedItem
	Rewatches     []models.RewatchEntry
	Episodes      []models.TvShowProgress
	MostRewatched *models.RewatchCount
}

// YearBounds returns the first and last millisecond of year in loc.
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// lifetimeBounds covers every representable watch date.
func lifetimeBounds(loc *time.Location) (time.Time, time.Time) {
	return time.Date(1, time.January, 1, 0, 0, 0, 0, loc), time.Date(9999, time.December, 31, 23, 59, 59, int(999*time.Millisecond), loc)
}

// inRange compares at millisecond precision, both ends inclusive.
func inRange(t, start, end time.Time) bool {
	ms := t.UnixMilli()
	return ms >= start.UnixMilli() && ms <= end.UnixMilli()
}

// aggregate folds the history into one summary row. It never touches storage
// and is deterministic for a given input, apart from CalculatedAt.
func aggregate(userID string, year int, start, end time.Time, in statsInput, now time.Time) *models.YearlyStats {
	loc := start.Location()
	stats := &models.YearlyStats{
		UserID:       userID,
		Year:         year,
		CalculatedAt: now,
	}

	var months [12]int
	genres := map[int]int{}
	actors := map[string]int{}
	directors := map[string]int{}

	var (
		topRated    *models.WatchedItem
		longest     *models.WatchedItem
		ratingSum   float64
		ratingCount int
	)

	for i := range in.Watched {
		item := &in.Watched[i]
		if !inRange(item.DateWatched, start, end) {
			continue
		}
		months[item.DateWatched.In(loc).Month()-1]++

		switch item.MediaType {
		case models.MediaTypeMovie:
			stats.TotalMoviesWatched++
			stats.MovieWatchTimeMinutes += item.Runtime * item.WatchCount
			if item.Runtime > 0 && (longest == nil || item.Runtime > longest.Runtime ||
				(item.Runtime == longest.Runtime && item.ID < longest.ID)) {
				longest = item
			}
		case models.MediaTypeTV:
			stats.TotalShowsWatched++
		}

		for _, g := range models.ParseGenreIDs(item.GenreIDs) {
			genres[g]++
		}
		for _, a := range models.SplitList(item.TopCast) {
			actors[a]++
		}
		if item.Director != "" {
			directors[item.Director]++
		}

		if item.UserRating != nil {
			ratingSum += *item.UserRating
			ratingCount++
			if topRated == nil || *item.UserRating > *topRated.UserRating ||
				(*item.UserRating == *topRated.UserRating && item.ID < topRated.ID) {
				topRated = item
			}
		}
	}

	for _, r := range in.Rewatches {
		if !inRange(r.WatchedAt, start, end) {
			continue
		}
		months[r.WatchedAt.In(loc).Month()-1]++
		stats.TotalRewatches++
		stats.RewatchTimeMinutes += r.WatchTimeMinutes
	}

	for _, ep := range in.Episodes {
		if ep.Watched && ep.WatchedAt != nil && inRange(*ep.WatchedAt, start, end) {
			stats.TotalEpisodesWatched++
		}
	}

	stats.TotalWatchTimeMinutes = stats.MovieWatchTimeMinutes + stats.RewatchTimeMinutes

	if id, n, ok := favoriteInt(genres); ok {
		stats.FavoriteGenreID = &id
		stats.FavoriteGenreCount = n
	}
	if name, _, ok := favoriteString(actors); ok {
		stats.FavoriteActor = &name
	}
	if name, _, ok := favoriteString(directors); ok {
		stats.FavoriteDirector = &name
	}

	if topRated != nil {
		id, mt, title, rating := topRated.ID, topRated.MediaType, topRated.Title, *topRated.UserRating
		stats.TopRatedID = &id
		stats.TopRatedMediaType = &mt
		stats.TopRatedTitle = &title
		stats.TopRatedRating = &rating
	}
	if longest != nil {
		id, title := longest.ID, longest.Title
		stats.LongestMovieID = &id
		stats.LongestMovieTitle = &title
		stats.LongestMovieRuntime = longest.Runtime
	}
	if mr := in.MostRewatched; mr != nil && mr.Count > 0 {
		id, mt, title := mr.ItemID, mr.MediaType, mr.Title
		stats.MostRewatchedID = &id
		stats.MostRewatchedMediaType = &mt
		stats.MostRewatchedTitle = &title
		stats.MostRewatchedCount = mr.Count
	}
	if ratingCount > 0 {
		stats.AverageRating = math.Round(ratingSum/float64(ratingCount)*100) / 100
	}

	raw, _ := json.Marshal(months)
	stats.MonthlyBreakdown = string(raw)
	return stats
}

// favoriteInt picks the highest count; ties go to the lowest key.
func favoriteInt(freq map[int]int) (int, int, bool) {
	best, bestN, found := 0, 0, false
	for k, n := range freq {
		if !found || n > bestN || (n == bestN && k < best) {
			best, bestN, found = k, n, true
		}
	}
	return best, bestN, found
}

// favoriteString picks the highest count; ties go to the alphabetically first key.
func favoriteString(freq map[string]int) (string, int, bool) {
	best, bestN, found := "", 0, false
	for k, n := range freq {
		if !found || n > bestN || (n == bestN && k < best) {
			best, bestN, found = k, n, true
		}
	}
	return best, bestN, found
}

// activeYears lists every calendar year in loc holding a watch event, newest first.
func activeYears(in statsInput, loc *time.Location) []int {
	seen := map[int]struct{}{}
	for _, w := range in.Watched {
		seen[w.DateWatched.In(loc).Year()] = struct{}{}
	}
	for _, r := range in.Rewatches {
		seen[r.WatchedAt.In(loc).Year()] = struct{}{}
	}
	for _, ep := range in.Episodes {
		if ep.Watched && ep.WatchedAt != nil {
			seen[ep.WatchedAt.In(loc).Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

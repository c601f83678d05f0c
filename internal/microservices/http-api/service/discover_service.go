package service

import (
	"context"
	"sort"
	"sync"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/tmdb"

	"golang.org/x/sync/errgroup"
)

const (
	discoverSeeds        = 5
	discoverDefaultLimit = 20
	discoverParallelism  = 4
)

// RecommendationService suggests titles based on the user's best rated history.
type RecommendationService interface {
	ForUser(ctx context.Context, userID string, limit int) ([]tmdb.SearchResult, error)
}

type recommendationService struct {
	library  repository.LibraryRepository
	metadata MetadataClient
}

func NewRecommendationService(library repository.LibraryRepository, metadata MetadataClient) RecommendationService {
	return &recommendationService{library: library, metadata: metadata}
}

type mediaKey struct {
	id        int64
	mediaType string
}

func (s *recommendationService) ForUser(ctx context.Context, userID string, limit int) ([]tmdb.SearchResult, error) {
	if limit <= 0 {
		limit = discoverDefaultLimit
	}

	watched, err := s.library.ListWatched(ctx, userID)
	if err != nil {
		return nil, err
	}
	planned, err := s.library.ListPlanned(ctx, userID)
	if err != nil {
		return nil, err
	}
	watching, err := s.library.ListWatching(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned := make(map[mediaKey]bool, len(watched)+len(planned)+len(watching))
	for _, w := range watched {
		owned[mediaKey{w.ID, w.MediaType}] = true
	}
	for _, p := range planned {
		owned[mediaKey{p.ID, p.MediaType}] = true
	}
	for _, w := range watching {
		owned[mediaKey{w.ID, w.MediaType}] = true
	}

	seeds := pickSeeds(watched, discoverSeeds)
	if len(seeds) == 0 {
		return []tmdb.SearchResult{}, nil
	}

	var (
		mu      sync.Mutex
		results []tmdb.SearchResult
		seen    = map[mediaKey]bool{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoverParallelism)
	for _, seed := range seeds {
		seed := seed
		g.Go(func() error {
			recs, err := s.metadata.Recommendations(gctx, seed.MediaType, seed.ID)
			if err != nil {
				// one failing seed should not sink the whole list
				logging.Ctx(ctx).Warn().Err(err).Int64("seed", seed.ID).Msg("recommendation lookup failed")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range recs {
				k := mediaKey{r.ID, r.MediaType}
				if owned[k] || seen[k] {
					continue
				}
				seen[k] = true
				results = append(results, r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].VoteAverage != results[j].VoteAverage {
			return results[i].VoteAverage > results[j].VoteAverage
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// pickSeeds returns the n highest rated watched items, topping up with the
// most recently watched unrated ones.
func pickSeeds(watched []models.WatchedItem, n int) []models.WatchedItem {
	rated := make([]models.WatchedItem, 0, len(watched))
	unrated := make([]models.WatchedItem, 0, len(watched))
	for _, w := range watched {
		if w.UserRating != nil {
			rated = append(rated, w)
		} else {
			unrated = append(unrated, w)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].UserRating > *rated[j].UserRating
	})
	sort.SliceStable(unrated, func(i, j int) bool {
		return unrated[i].DateWatched.After(unrated[j].DateWatched)
	})

	seeds := append(rated, unrated...)
	if len(seeds) > n {
		seeds = seeds[:n]
	}
	return seeds
}

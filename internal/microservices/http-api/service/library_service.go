package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/tmdb"
)

const (
	BucketWatched  = "watched"
	BucketPlanned  = "planned"
	BucketWatching = "watching"
)

var (
	ErrAlreadyInLibrary = errors.New("item already in library")
	ErrNotInLibrary     = errors.New("item not in library")
	ErrNotWatched       = errors.New("item has not been watched")
	ErrInvalidBucket    = errors.New("bucket must be watched, planned or watching")
	ErrInvalidMediaType = errors.New("media type must be movie or tv")
	ErrInvalidRating    = errors.New("rating must be between 0.5 and 10 in steps of 0.5")
	ErrMissingTitle     = errors.New("title is required when metadata is unavailable")
)

// MediaInput describes an item being placed in a bucket. Missing metadata is
// filled from TMDB when possible.
type MediaInput struct {
	ID          int64
	MediaType   string
	Title       string
	PosterPath  string
	Runtime     int
	VoteAverage float64
	GenreIDs    []int
	Director    string
	TopCast     string
	Rating      *float64
	WatchedAt   time.Time
}

// LibraryItem is the bucket-agnostic view of a library row.
type LibraryItem struct {
	Bucket      string    `json:"bucket"`
	ID          int64     `json:"id"`
	MediaType   string    `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Runtime     int       `json:"runtime"`
	VoteAverage float64   `json:"vote_average"`
	GenreIDs    []int     `json:"genre_ids"`
	UserRating  *float64  `json:"user_rating,omitempty"`
	WatchCount  int       `json:"watch_count,omitempty"`
	Date        time.Time `json:"date"`
}

// ItemStatus reports which buckets hold an item.
type ItemStatus struct {
	ID         int64    `json:"id"`
	MediaType  string   `json:"media_type"`
	Watched    bool     `json:"watched"`
	Planned    bool     `json:"planned"`
	Watching   bool     `json:"watching"`
	WatchCount int      `json:"watch_count"`
	UserRating *float64 `json:"user_rating,omitempty"`
}

type LibraryService interface {
	MarkWatched(ctx context.Context, userID string, in MediaInput) (*models.WatchedItem, error)
	AddPlanned(ctx context.Context, userID string, in MediaInput) (*models.PlannedItem, error)
	AddWatching(ctx context.Context, userID string, in MediaInput) (*models.WatchingItem, error)
	Remove(ctx context.Context, userID, bucket string, id int64, mediaType string) error
	List(ctx context.Context, userID, bucket string) ([]LibraryItem, error)
	Get(ctx context.Context, userID, bucket string, id int64, mediaType string) (*LibraryItem, error)
	RateItem(ctx context.Context, userID string, id int64, mediaType string, rating float64) (*models.WatchedItem, error)
	Status(ctx context.Context, userID string, id int64, mediaType string) (*ItemStatus, error)
}

type libraryService struct {
	repo     repository.LibraryRepository
	metadata MetadataClient
	activity ActivityPoster
	stats    StatsInvalidator
	now      func() time.Time
}

func NewLibraryService(
	repo repository.LibraryRepository,
	metadata MetadataClient,
	activity ActivityPoster,
	stats StatsInvalidator,
) LibraryService {
	return &libraryService{
		repo:     repo,
		metadata: metadata,
		activity: activity,
		stats:    stats,
		now:      time.Now,
	}
}

// ValidRating accepts 0.5 to 10 in half steps.
func ValidRating(r float64) bool {
	return r >= 0.5 && r <= 10 && math.Mod(r*2, 1) == 0
}

// enrich fills gaps in the input from TMDB. Lookup failures are tolerated as
// long as a title is known.
func (s *libraryService) enrich(ctx context.Context, in *MediaInput) error {
	if !models.ValidMediaType(in.MediaType) {
		return ErrInvalidMediaType
	}
	needsDetails := in.Title == "" || in.Runtime == 0 || len(in.GenreIDs) == 0
	needsCredits := in.MediaType == models.MediaTypeMovie && (in.Director == "" || in.TopCast == "")

	if s.metadata != nil && needsDetails {
		if err := s.fillDetails(ctx, in); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("id", in.ID).Str("media_type", in.MediaType).Msg("metadata lookup failed")
		}
	}
	if s.metadata != nil && needsCredits {
		credits, err := s.metadata.Credits(ctx, in.MediaType, in.ID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("id", in.ID).Msg("credits lookup failed")
		} else {
			if in.Director == "" {
				in.Director = credits.Director()
			}
			if in.TopCast == "" {
				in.TopCast = credits.TopCast(5)
			}
		}
	}

	if in.Title == "" {
		return ErrMissingTitle
	}
	return nil
}

func (s *libraryService) fillDetails(ctx context.Context, in *MediaInput) error {
	switch in.MediaType {
	case models.MediaTypeMovie:
		d, err := s.metadata.MovieDetails(ctx, in.ID)
		if err != nil {
			return err
		}
		in.Title = firstNonEmpty(in.Title, d.Title)
		in.PosterPath = firstNonEmpty(in.PosterPath, d.PosterPath)
		if in.Runtime == 0 {
			in.Runtime = d.Runtime
		}
		if in.VoteAverage == 0 {
			in.VoteAverage = d.VoteAverage
		}
		if len(in.GenreIDs) == 0 {
			in.GenreIDs = tmdb.GenreIDs(d.Genres)
		}
	case models.MediaTypeTV:
		d, err := s.metadata.TVDetails(ctx, in.ID)
		if err != nil {
			return err
		}
		in.Title = firstNonEmpty(in.Title, d.Name)
		in.PosterPath = firstNonEmpty(in.PosterPath, d.PosterPath)
		if in.Runtime == 0 {
			in.Runtime = d.AverageRuntime()
		}
		if in.VoteAverage == 0 {
			in.VoteAverage = d.VoteAverage
		}
		if len(in.GenreIDs) == 0 {
			in.GenreIDs = tmdb.GenreIDs(d.Genres)
		}
	}
	return nil
}

func (s *libraryService) MarkWatched(ctx context.Context, userID string, in MediaInput) (*models.WatchedItem, error) {
	if in.Rating != nil && !ValidRating(*in.Rating) {
		return nil, ErrInvalidRating
	}
	if in.WatchedAt.IsZero() {
		in.WatchedAt = s.now()
	}

	existing, err := s.repo.GetWatched(ctx, userID, in.ID, in.MediaType)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var (
		item    *models.WatchedItem
		rewatch *models.RewatchEntry
		touched = []time.Time{in.WatchedAt}
	)
	if existing != nil {
		// watching it again: bump the count and log the viewing
		item = existing
		touched = append(touched, existing.DateWatched)
		item.WatchCount++
		item.DateWatched = in.WatchedAt
		if in.Rating != nil {
			item.UserRating = in.Rating
		}
		rewatch = &models.RewatchEntry{
			UserID:           userID,
			ItemID:           item.ID,
			MediaType:        item.MediaType,
			Title:            item.Title,
			WatchedAt:        in.WatchedAt,
			Rating:           in.Rating,
			WatchTimeMinutes: item.Runtime,
		}
	} else {
		if err := s.enrich(ctx, &in); err != nil {
			return nil, err
		}
		item = &models.WatchedItem{
			UserID:      userID,
			ID:          in.ID,
			MediaType:   in.MediaType,
			Title:       in.Title,
			PosterPath:  in.PosterPath,
			Runtime:     in.Runtime,
			VoteAverage: in.VoteAverage,
			UserRating:  in.Rating,
			WatchCount:  1,
			GenreIDs:    models.JoinGenreIDs(in.GenreIDs),
			Director:    in.Director,
			TopCast:     in.TopCast,
			DateWatched: in.WatchedAt,
		}
	}

	if err := s.repo.RecordWatch(ctx, item, rewatch); err != nil {
		return nil, fmt.Errorf("record watch: %w", err)
	}

	s.stats.Invalidate(ctx, userID, touched...)
	s.activity.Post(ctx, &models.Activity{
		UserID:    userID,
		Type:      models.ActivityWatched,
		ItemID:    item.ID,
		MediaType: item.MediaType,
		Title:     item.Title,
		Rating:    item.UserRating,
	})
	return item, nil
}

func (s *libraryService) AddPlanned(ctx context.Context, userID string, in MediaInput) (*models.PlannedItem, error) {
	if !models.ValidMediaType(in.MediaType) {
		return nil, ErrInvalidMediaType
	}
	if _, err := s.repo.GetPlanned(ctx, userID, in.ID, in.MediaType); err == nil {
		return nil, ErrAlreadyInLibrary
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.enrich(ctx, &in); err != nil {
		return nil, err
	}

	// an item being watched is moved back to planned rather than duplicated
	if err := s.repo.DeleteWatching(ctx, userID, in.ID, in.MediaType); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	item := &models.PlannedItem{
		UserID:      userID,
		ID:          in.ID,
		MediaType:   in.MediaType,
		Title:       in.Title,
		PosterPath:  in.PosterPath,
		Runtime:     in.Runtime,
		VoteAverage: in.VoteAverage,
		GenreIDs:    models.JoinGenreIDs(in.GenreIDs),
	}
	if err := s.repo.AddPlanned(ctx, item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyInLibrary
		}
		return nil, err
	}

	s.activity.Post(ctx, &models.Activity{
		UserID:    userID,
		Type:      models.ActivityPlanned,
		ItemID:    item.ID,
		MediaType: item.MediaType,
		Title:     item.Title,
	})
	return item, nil
}

func (s *libraryService) AddWatching(ctx context.Context, userID string, in MediaInput) (*models.WatchingItem, error) {
	if !models.ValidMediaType(in.MediaType) {
		return nil, ErrInvalidMediaType
	}
	if _, err := s.repo.GetWatching(ctx, userID, in.ID, in.MediaType); err == nil {
		return nil, ErrAlreadyInLibrary
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.enrich(ctx, &in); err != nil {
		return nil, err
	}

	item := &models.WatchingItem{
		UserID:      userID,
		ID:          in.ID,
		MediaType:   in.MediaType,
		Title:       in.Title,
		PosterPath:  in.PosterPath,
		Runtime:     in.Runtime,
		VoteAverage: in.VoteAverage,
		GenreIDs:    models.JoinGenreIDs(in.GenreIDs),
	}
	if err := s.repo.MoveToWatching(ctx, item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyInLibrary
		}
		return nil, err
	}
	return item, nil
}

func (s *libraryService) Remove(ctx context.Context, userID, bucket string, id int64, mediaType string) error {
	var err error
	switch bucket {
	case BucketWatched:
		var (
			item      *models.WatchedItem
			rewatches []time.Time
		)
		item, err = s.repo.GetWatched(ctx, userID, id, mediaType)
		if err == nil {
			if rewatches, err = s.repo.DeleteWatched(ctx, userID, id, mediaType); err == nil {
				s.stats.Invalidate(ctx, userID, append(rewatches, item.DateWatched)...)
			}
		}
	case BucketPlanned:
		err = s.repo.DeletePlanned(ctx, userID, id, mediaType)
	case BucketWatching:
		err = s.repo.DeleteWatching(ctx, userID, id, mediaType)
	default:
		return ErrInvalidBucket
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotInLibrary
	}
	return err
}

func (s *libraryService) List(ctx context.Context, userID, bucket string) ([]LibraryItem, error) {
	switch bucket {
	case BucketWatched:
		rows, err := s.repo.ListWatched(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]LibraryItem, len(rows))
		for i := range rows {
			out[i] = watchedView(&rows[i])
		}
		return out, nil
	case BucketPlanned:
		rows, err := s.repo.ListPlanned(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]LibraryItem, len(rows))
		for i := range rows {
			out[i] = plannedView(&rows[i])
		}
		return out, nil
	case BucketWatching:
		rows, err := s.repo.ListWatching(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]LibraryItem, len(rows))
		for i := range rows {
			out[i] = watchingView(&rows[i])
		}
		return out, nil
	default:
		return nil, ErrInvalidBucket
	}
}

func (s *libraryService) Get(ctx context.Context, userID, bucket string, id int64, mediaType string) (*LibraryItem, error) {
	var (
		view LibraryItem
		err  error
	)
	switch bucket {
	case BucketWatched:
		var row *models.WatchedItem
		if row, err = s.repo.GetWatched(ctx, userID, id, mediaType); err == nil {
			view = watchedView(row)
		}
	case BucketPlanned:
		var row *models.PlannedItem
		if row, err = s.repo.GetPlanned(ctx, userID, id, mediaType); err == nil {
			view = plannedView(row)
		}
	case BucketWatching:
		var row *models.WatchingItem
		if row, err = s.repo.GetWatching(ctx, userID, id, mediaType); err == nil {
			view = watchingView(row)
		}
	default:
		return nil, ErrInvalidBucket
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotInLibrary
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *libraryService) RateItem(ctx context.Context, userID string, id int64, mediaType string, rating float64) (*models.WatchedItem, error) {
	if !ValidRating(rating) {
		return nil, ErrInvalidRating
	}
	item, err := s.repo.GetWatched(ctx, userID, id, mediaType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotWatched
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRating(ctx, userID, id, mediaType, &rating); err != nil {
		return nil, err
	}
	item.UserRating = &rating

	s.stats.Invalidate(ctx, userID, item.DateWatched)
	s.activity.Post(ctx, &models.Activity{
		UserID:    userID,
		Type:      models.ActivityRated,
		ItemID:    item.ID,
		MediaType: item.MediaType,
		Title:     item.Title,
		Rating:    &rating,
	})
	return item, nil
}

func (s *libraryService) Status(ctx context.Context, userID string, id int64, mediaType string) (*ItemStatus, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, ErrInvalidMediaType
	}
	st := &ItemStatus{ID: id, MediaType: mediaType}

	w, err := s.repo.GetWatched(ctx, userID, id, mediaType)
	switch {
	case err == nil:
		st.Watched = true
		st.WatchCount = w.WatchCount
		st.UserRating = w.UserRating
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if _, err := s.repo.GetPlanned(ctx, userID, id, mediaType); err == nil {
		st.Planned = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.repo.GetWatching(ctx, userID, id, mediaType); err == nil {
		st.Watching = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return st, nil
}

func watchedView(w *models.WatchedItem) LibraryItem {
	return LibraryItem{
		Bucket:      BucketWatched,
		ID:          w.ID,
		MediaType:   w.MediaType,
		Title:       w.Title,
		PosterPath:  w.PosterPath,
		Runtime:     w.Runtime,
		VoteAverage: w.VoteAverage,
		GenreIDs:    models.ParseGenreIDs(w.GenreIDs),
		UserRating:  w.UserRating,
		WatchCount:  w.WatchCount,
		Date:        w.DateWatched,
	}
}

func plannedView(p *models.PlannedItem) LibraryItem {
	return LibraryItem{
		Bucket:      BucketPlanned,
		ID:          p.ID,
		MediaType:   p.MediaType,
		Title:       p.Title,
		PosterPath:  p.PosterPath,
		Runtime:     p.Runtime,
		VoteAverage: p.VoteAverage,
		GenreIDs:    models.ParseGenreIDs(p.GenreIDs),
		Date:        p.AddedAt,
	}
}

func watchingView(w *models.WatchingItem) LibraryItem {
	return LibraryItem{
		Bucket:      BucketWatching,
		ID:          w.ID,
		MediaType:   w.MediaType,
		Title:       w.Title,
		PosterPath:  w.PosterPath,
		Runtime:     w.Runtime,
		VoteAverage: w.VoteAverage,
		GenreIDs:    models.ParseGenreIDs(w.GenreIDs),
		Date:        w.StartedAt,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

package service

import (
	"context"
	"errors"
	"math"
	"time"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/tmdb"
)

var ErrInvalidEpisode = errors.New("season and episode must be positive")

// EpisodeRef points at one episode of a show.
type EpisodeRef struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

// ShowProgress summarizes how far a user is through a show.
type ShowProgress struct {
	ShowID          int64       `json:"show_id"`
	Title           string      `json:"title"`
	WatchedEpisodes int         `json:"watched_episodes"`
	TotalEpisodes   int         `json:"total_episodes"`
	Percent         float64     `json:"percent"`
	MinutesWatched  int         `json:"minutes_watched"`
	NextEpisode     *EpisodeRef `json:"next_episode,omitempty"`
}

// EpisodeStatus is a TMDB episode annotated with the user's watched flag.
type EpisodeStatus struct {
	tmdb.Episode
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

// TvShowEpisodeService tracks per-episode progress.
type TvShowEpisodeService interface {
	SetEpisodeWatched(ctx context.Context, userID string, showID int64, season, episode int, watched bool) (*models.TvShowProgress, error)
	MarkSeasonWatched(ctx context.Context, userID string, showID int64, season int) (int, error)
	ShowProgress(ctx context.Context, userID string, showID int64) (*ShowProgress, error)
	SeasonEpisodes(ctx context.Context, userID string, showID int64, season int) ([]EpisodeStatus, error)
}

type tvEpisodeService struct {
	repo     repository.TvProgressRepository
	metadata MetadataClient
	stats    StatsInvalidator
	now      func() time.Time
}

func NewTvShowEpisodeService(repo repository.TvProgressRepository, metadata MetadataClient, stats StatsInvalidator) TvShowEpisodeService {
	return &tvEpisodeService{repo: repo, metadata: metadata, stats: stats, now: time.Now}
}

func (s *tvEpisodeService) SetEpisodeWatched(ctx context.Context, userID string, showID int64, season, episode int, watched bool) (*models.TvShowProgress, error) {
	if season < 1 || episode < 1 {
		return nil, ErrInvalidEpisode
	}

	prev := s.findRow(ctx, userID, showID, season, episode)
	if watched && prev != nil && prev.Watched && prev.WatchedAt != nil {
		// already watched: keep the original date
		return prev, nil
	}

	row := models.TvShowProgress{
		UserID:  userID,
		ShowID:  showID,
		Season:  season,
		Episode: episode,
		Watched: watched,
	}
	var touched []time.Time
	if watched {
		now := s.now()
		row.WatchedAt = &now
		row.Runtime = s.episodeRuntime(ctx, showID, season, episode)
		touched = append(touched, now)
	} else if prev != nil && prev.WatchedAt != nil {
		touched = append(touched, *prev.WatchedAt)
	}

	if err := s.repo.Upsert(ctx, []models.TvShowProgress{row}); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, userID, touched...)
	return &row, nil
}

func (s *tvEpisodeService) findRow(ctx context.Context, userID string, showID int64, season, episode int) *models.TvShowProgress {
	rows, err := s.repo.ListForSeason(ctx, userID, showID, season)
	if err != nil {
		return nil
	}
	for i := range rows {
		if rows[i].Episode == episode {
			return &rows[i]
		}
	}
	return nil
}

// episodeRuntime asks TMDB for the runtime, falling back to the show's
// advertised episode length and finally zero.
func (s *tvEpisodeService) episodeRuntime(ctx context.Context, showID int64, season, episode int) int {
	if sd, err := s.metadata.SeasonDetails(ctx, showID, season); err == nil {
		for _, ep := range sd.Episodes {
			if ep.EpisodeNumber == episode && ep.Runtime > 0 {
				return ep.Runtime
			}
		}
	}
	if d, err := s.metadata.TVDetails(ctx, showID); err == nil {
		return d.AverageRuntime()
	}
	return 0
}

// MarkSeasonWatched marks every episode of season watched now and returns how
// many were newly marked. Episodes already watched keep their date.
func (s *tvEpisodeService) MarkSeasonWatched(ctx context.Context, userID string, showID int64, season int) (int, error) {
	if season < 1 {
		return 0, ErrInvalidEpisode
	}
	sd, err := s.metadata.SeasonDetails(ctx, showID, season)
	if err != nil {
		return 0, err
	}

	fallback := 0
	if d, err := s.metadata.TVDetails(ctx, showID); err == nil {
		fallback = d.AverageRuntime()
	}

	existing, err := s.repo.ListForSeason(ctx, userID, showID, season)
	if err != nil {
		return 0, err
	}
	seen := make(map[int]bool, len(existing))
	for _, r := range existing {
		if r.Watched && r.WatchedAt != nil {
			seen[r.Episode] = true
		}
	}

	now := s.now()
	rows := make([]models.TvShowProgress, 0, len(sd.Episodes))
	for _, ep := range sd.Episodes {
		if seen[ep.EpisodeNumber] {
			continue
		}
		runtime := ep.Runtime
		if runtime == 0 {
			runtime = fallback
		}
		rows = append(rows, models.TvShowProgress{
			UserID:    userID,
			ShowID:    showID,
			Season:    season,
			Episode:   ep.EpisodeNumber,
			Watched:   true,
			WatchedAt: &now,
			Runtime:   runtime,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return 0, err
	}
	s.stats.Invalidate(ctx, userID, now)

	logging.Ctx(ctx).Debug().Int64("show_id", showID).Int("season", season).Int("episodes", len(rows)).Msg("season marked watched")
	return len(rows), nil
}

func (s *tvEpisodeService) ShowProgress(ctx context.Context, userID string, showID int64) (*ShowProgress, error) {
	details, err := s.metadata.TVDetails(ctx, showID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForShow(ctx, userID, showID)
	if err != nil {
		return nil, err
	}
	return computeProgress(details, rows), nil
}

// computeProgress combines season episode counts with progress rows. Season 0
// specials count toward neither side.
func computeProgress(details *tmdb.TVDetails, rows []models.TvShowProgress) *ShowProgress {
	p := &ShowProgress{ShowID: details.ID, Title: details.Name}

	watched := make(map[EpisodeRef]bool, len(rows))
	for _, r := range rows {
		if !r.Watched || r.Season < 1 {
			continue
		}
		watched[EpisodeRef{Season: r.Season, Episode: r.Episode}] = true
		p.WatchedEpisodes++
		p.MinutesWatched += r.Runtime
	}

	seasons := details.RegularSeasons()
	for _, season := range seasons {
		p.TotalEpisodes += season.EpisodeCount
	}
	if len(seasons) == 0 {
		p.TotalEpisodes = details.NumberOfEpisodes
	}

	if p.TotalEpisodes > 0 {
		pct := float64(p.WatchedEpisodes) / float64(p.TotalEpisodes) * 100
		p.Percent = math.Min(100, math.Round(pct*100)/100)
	}

	for _, season := range seasons {
		for ep := 1; ep <= season.EpisodeCount; ep++ {
			ref := EpisodeRef{Season: season.SeasonNumber, Episode: ep}
			if !watched[ref] {
				p.NextEpisode = &ref
				return p
			}
		}
	}
	return p
}

func (s *tvEpisodeService) SeasonEpisodes(ctx context.Context, userID string, showID int64, season int) ([]EpisodeStatus, error) {
	sd, err := s.metadata.SeasonDetails(ctx, showID, season)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForSeason(ctx, userID, showID, season)
	if err != nil {
		return nil, err
	}
	byEpisode := make(map[int]models.TvShowProgress, len(rows))
	for _, r := range rows {
		byEpisode[r.Episode] = r
	}

	out := make([]EpisodeStatus, len(sd.Episodes))
	for i, ep := range sd.Episodes {
		out[i] = EpisodeStatus{Episode: ep}
		if r, ok := byEpisode[ep.EpisodeNumber]; ok && r.Watched {
			out[i].Watched = true
			out[i].WatchedAt = r.WatchedAt
		}
	}
	return out, nil
}

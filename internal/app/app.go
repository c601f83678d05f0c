// Package app builds the object graph shared by the API server and the
// operator CLI.
package app

import (
	"fmt"
	"time"

	"cinetrack/database"
	"cinetrack/internal/cache"
	"cinetrack/internal/config"
	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/microservices/http-api/service"
	"cinetrack/internal/microservices/websocket"
	"cinetrack/internal/tmdb"

	"gorm.io/gorm"
)

type Repositories struct {
	Users           repository.UserRepository
	RefreshTokens   repository.RefreshTokenRepository
	Library         repository.LibraryRepository
	Rewatches       repository.RewatchRepository
	TvProgress      repository.TvProgressRepository
	Stats           repository.StatsRepository
	Collections     repository.CollectionRepository
	Friendships     repository.FriendshipRepository
	Activities      repository.ActivityRepository
	Recommendations repository.RecommendationRepository
	Notifications   repository.NotificationRepository
}

type Services struct {
	Auth                  service.AuthService
	Library               service.LibraryService
	Rewatch               service.RewatchService
	Episodes              service.TvShowEpisodeService
	TvUpdates             service.TvShowUpdateService
	Stats                 service.StatsService
	Discover              service.RecommendationService
	Collections           service.CollectionService
	Friends               service.FriendService
	FriendRecommendations service.FriendRecommendationService
	Activity              service.ActivityService
	Notifications         service.NotificationService
}

// App owns the process-wide resources. Close releases them.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	TMDB   *tmdb.Client
	Hub    *websocket.Hub

	Repos    Repositories
	Services Services
}

// New connects to Postgres and, when configured, Redis, then wires every
// repository and service. Redis is optional; without it caching is skipped.
func New(cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.RedisURL != "" {
		c, err = cache.New(cfg.RedisURL, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			logging.Warn().Err(err).Msg("redis unavailable, continuing without cache")
			c = nil
		}
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Cache:  c,
		TMDB: tmdb.NewClient(tmdb.Config{
			BaseURL:   cfg.TMDBAPIURL,
			APIKey:    cfg.TMDBAPIKey,
			RateLimit: cfg.TMDBRateLimit,
			CacheTTL:  time.Duration(cfg.CacheTTL) * time.Second,
		}, c),
		Hub: websocket.NewHub(),
	}
	a.Repos = newRepositories(db)
	a.Services = newServices(cfg, a, loc)
	return a, nil
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:           repository.NewUserRepository(db),
		RefreshTokens:   repository.NewRefreshTokenRepository(db),
		Library:         repository.NewLibraryRepository(db),
		Rewatches:       repository.NewRewatchRepository(db),
		TvProgress:      repository.NewTvProgressRepository(db),
		Stats:           repository.NewStatsRepository(db),
		Collections:     repository.NewCollectionRepository(db),
		Friendships:     repository.NewFriendshipRepository(db),
		Activities:      repository.NewActivityRepository(db),
		Recommendations: repository.NewRecommendationRepository(db),
		Notifications:   repository.NewNotificationRepository(db),
	}
}

func newServices(cfg *config.Config, a *App, loc *time.Location) Services {
	r := a.Repos

	notifications := service.NewNotificationService(r.Notifications, a.Hub)
	activity := service.NewActivityService(r.Activities, r.Friendships, r.Users, a.Hub)
	stats := service.NewStatsService(r.Library, r.Rewatches, r.TvProgress, r.Stats, a.Cache, loc)

	return Services{
		Auth:                  service.NewAuthService(r.Users, r.RefreshTokens, cfg),
		Library:               service.NewLibraryService(r.Library, a.TMDB, activity, stats),
		Rewatch:               service.NewRewatchService(r.Rewatches, r.Library, stats),
		Episodes:              service.NewTvShowEpisodeService(r.TvProgress, a.TMDB, stats),
		TvUpdates:             service.NewTvShowUpdateService(r.Library, r.TvProgress, a.TMDB, notifications, cfg.TVUpdateWorkers),
		Stats:                 stats,
		Discover:              service.NewRecommendationService(r.Library, a.TMDB),
		Collections:           service.NewCollectionService(r.Collections, activity),
		Friends:               service.NewFriendService(r.Friendships, r.Users, notifications),
		FriendRecommendations: service.NewFriendRecommendationService(r.Recommendations, r.Friendships, r.Users, notifications, activity),
		Activity:              activity,
		Notifications:         notifications,
	}
}

// Close releases the database pool and the Redis connection.
func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close redis")
	}
	database.Close(a.DB)
}

// LoadConfig loads and validates configuration and initialises logging.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

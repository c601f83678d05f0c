package service

import (
	"context"
	"sync"
	"time"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/tmdb"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(id, at).Error(0)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return m.Called(token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, oldID, newID string) error {
	return m.Called(oldID, newID).Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// MockLibraryRepository mocks the LibraryRepository interface
type MockLibraryRepository struct {
	mock.Mock
}

func (m *MockLibraryRepository) GetWatched(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchedItem, error) {
	args := m.Called(userID, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchedItem), args.Error(1)
}

func (m *MockLibraryRepository) ListWatched(ctx context.Context, userID string) ([]models.WatchedItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WatchedItem), args.Error(1)
}

func (m *MockLibraryRepository) DeleteWatched(ctx context.Context, userID string, id int64, mediaType string) ([]time.Time, error) {
	args := m.Called(userID, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockLibraryRepository) UpdateRating(ctx context.Context, userID string, id int64, mediaType string, rating *float64) error {
	return m.Called(userID, id, mediaType, rating).Error(0)
}

func (m *MockLibraryRepository) RecordWatch(ctx context.Context, item *models.WatchedItem, rewatch *models.RewatchEntry) error {
	return m.Called(item, rewatch).Error(0)
}

func (m *MockLibraryRepository) GetPlanned(ctx context.Context, userID string, id int64, mediaType string) (*models.PlannedItem, error) {
	args := m.Called(userID, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlannedItem), args.Error(1)
}

func (m *MockLibraryRepository) ListPlanned(ctx context.Context, userID string) ([]models.PlannedItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlannedItem), args.Error(1)
}

func (m *MockLibraryRepository) AddPlanned(ctx context.Context, item *models.PlannedItem) error {
	return m.Called(item).Error(0)
}

func (m *MockLibraryRepository) DeletePlanned(ctx context.Context, userID string, id int64, mediaType string) error {
	return m.Called(userID, id, mediaType).Error(0)
}

func (m *MockLibraryRepository) GetWatching(ctx context.Context, userID string, id int64, mediaType string) (*models.WatchingItem, error) {
	args := m.Called(userID, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchingItem), args.Error(1)
}

func (m *MockLibraryRepository) ListWatching(ctx context.Context, userID string) ([]models.WatchingItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WatchingItem), args.Error(1)
}

func (m *MockLibraryRepository) MoveToWatching(ctx context.Context, item *models.WatchingItem) error {
	return m.Called(item).Error(0)
}

func (m *MockLibraryRepository) DeleteWatching(ctx context.Context, userID string, id int64, mediaType string) error {
	return m.Called(userID, id, mediaType).Error(0)
}

func (m *MockLibraryRepository) ListWatchingShows(ctx context.Context) ([]models.WatchingItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WatchingItem), args.Error(1)
}

// MockRewatchRepository mocks the RewatchRepository interface
type MockRewatchRepository struct {
	mock.Mock
}

func (m *MockRewatchRepository) Log(ctx context.Context, entry *models.RewatchEntry) error {
	return m.Called(entry).Error(0)
}

func (m *MockRewatchRepository) Get(ctx context.Context, userID string, id int64) (*models.RewatchEntry, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewatchEntry), args.Error(1)
}

func (m *MockRewatchRepository) ListForItem(ctx context.Context, userID string, itemID int64, mediaType string) ([]models.RewatchEntry, error) {
	args := m.Called(userID, itemID, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RewatchEntry), args.Error(1)
}

func (m *MockRewatchRepository) ListByUser(ctx context.Context, userID string) ([]models.RewatchEntry, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RewatchEntry), args.Error(1)
}

func (m *MockRewatchRepository) Delete(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockRewatchRepository) MostRewatchedBetween(ctx context.Context, userID string, start, end time.Time) (*models.RewatchCount, error) {
	args := m.Called(userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewatchCount), args.Error(1)
}

// MockTvProgressRepository mocks the TvProgressRepository interface
type MockTvProgressRepository struct {
	mock.Mock
}

func (m *MockTvProgressRepository) Upsert(ctx context.Context, rows []models.TvShowProgress) error {
	return m.Called(rows).Error(0)
}

func (m *MockTvProgressRepository) ListForShow(ctx context.Context, userID string, showID int64) ([]models.TvShowProgress, error) {
	args := m.Called(userID, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TvShowProgress), args.Error(1)
}

func (m *MockTvProgressRepository) ListForSeason(ctx context.Context, userID string, showID int64, season int) ([]models.TvShowProgress, error) {
	args := m.Called(userID, showID, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TvShowProgress), args.Error(1)
}

func (m *MockTvProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.TvShowProgress, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TvShowProgress), args.Error(1)
}

func (m *MockTvProgressRepository) GetSnapshot(ctx context.Context, userID string, showID int64) (*models.TvShowSnapshot, error) {
	args := m.Called(userID, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TvShowSnapshot), args.Error(1)
}

func (m *MockTvProgressRepository) SaveSnapshot(ctx context.Context, snap *models.TvShowSnapshot) error {
	return m.Called(snap).Error(0)
}

// MockStatsRepository mocks the StatsRepository interface
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Upsert(ctx context.Context, stats *models.YearlyStats) error {
	return m.Called(stats).Error(0)
}

func (m *MockStatsRepository) Get(ctx context.Context, userID string, year int) (*models.YearlyStats, error) {
	args := m.Called(userID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YearlyStats), args.Error(1)
}

func (m *MockStatsRepository) ListYears(ctx context.Context, userID string) ([]int, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockStatsRepository) Delete(ctx context.Context, userID string, years ...int) error {
	return m.Called(userID, years).Error(0)
}

// MockCollectionRepository mocks the CollectionRepository interface
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) Create(ctx context.Context, c *models.UserCollection) error {
	return m.Called(c).Error(0)
}

func (m *MockCollectionRepository) Get(ctx context.Context, userID, id string) (*models.UserCollection, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserCollection), args.Error(1)
}

func (m *MockCollectionRepository) ListWithCounts(ctx context.Context, userID string) ([]models.CollectionSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionSummary), args.Error(1)
}

func (m *MockCollectionRepository) Update(ctx context.Context, c *models.UserCollection) error {
	return m.Called(c).Error(0)
}

func (m *MockCollectionRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockCollectionRepository) AddItem(ctx context.Context, item *models.CollectionItem) error {
	return m.Called(item).Error(0)
}

func (m *MockCollectionRepository) RemoveItem(ctx context.Context, collectionID string, itemID int64, mediaType string) error {
	return m.Called(collectionID, itemID, mediaType).Error(0)
}

func (m *MockCollectionRepository) ListItems(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	args := m.Called(collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionItem), args.Error(1)
}

// MockFriendshipRepository mocks the FriendshipRepository interface
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockFriendshipRepository) GetRequest(ctx context.Context, id int64) (*models.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) PendingBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) Accept(ctx context.Context, req *models.FriendRequest, at time.Time) error {
	return m.Called(req, at).Error(0)
}

func (m *MockFriendshipRepository) SetStatus(ctx context.Context, id int64, status string, at time.Time) error {
	return m.Called(id, status, at).Error(0)
}

func (m *MockFriendshipRepository) DeleteRequest(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockFriendshipRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFriendshipRepository) Remove(ctx context.Context, a, b string) error {
	return m.Called(a, b).Error(0)
}

// MockActivityRepository mocks the ActivityRepository interface
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	return m.Called(a).Error(0)
}

func (m *MockActivityRepository) Feed(ctx context.Context, userIDs []string, before time.Time, limit int) ([]models.Activity, error) {
	args := m.Called(userIDs, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

// MockRecommendationRepository mocks the RecommendationRepository interface
type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	return m.Called(rec).Error(0)
}

func (m *MockRecommendationRepository) ListReceived(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error) {
	args := m.Called(userID, unseenOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) MarkSeen(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockRecommendationRepository) Delete(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return m.Called(n).Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMetadataClient mocks the MetadataClient interface
type MockMetadataClient struct {
	mock.Mock
}

func (m *MockMetadataClient) SearchMulti(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
	args := m.Called(query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.SearchPage), args.Error(1)
}

func (m *MockMetadataClient) MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.MovieDetails), args.Error(1)
}

func (m *MockMetadataClient) TVDetails(ctx context.Context, id int64) (*tmdb.TVDetails, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.TVDetails), args.Error(1)
}

func (m *MockMetadataClient) FreshTVDetails(ctx context.Context, id int64) (*tmdb.TVDetails, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.TVDetails), args.Error(1)
}

func (m *MockMetadataClient) SeasonDetails(ctx context.Context, showID int64, season int) (*tmdb.SeasonDetails, error) {
	args := m.Called(showID, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.SeasonDetails), args.Error(1)
}

func (m *MockMetadataClient) Recommendations(ctx context.Context, mediaType string, id int64) ([]tmdb.SearchResult, error) {
	args := m.Called(mediaType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tmdb.SearchResult), args.Error(1)
}

func (m *MockMetadataClient) Credits(ctx context.Context, mediaType string, id int64) (*tmdb.Credits, error) {
	args := m.Called(mediaType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.Credits), args.Error(1)
}

// recordingActivity captures posted activities.
type recordingActivity struct {
	mu    sync.Mutex
	posts []models.Activity
}

func (r *recordingActivity) Post(ctx context.Context, a *models.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, *a)
}

// recordingStats captures invalidated timestamps.
type recordingStats struct {
	mu    sync.Mutex
	times []time.Time
}

func (r *recordingStats) Invalidate(ctx context.Context, userID string, at ...time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, at...)
}

// recordingNotifier captures sent notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, *n)
	return nil
}

// recordingBroadcaster captures live events.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []LiveEvent
	to     [][]string
}

func (r *recordingBroadcaster) SendToUsers(userIDs []string, event LiveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.to = append(r.to, userIDs)
}

func ptr[T any](v T) *T { return &v }

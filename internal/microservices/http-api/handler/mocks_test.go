package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"
	"cinetrack/internal/tmdb"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/mock"
)

const testUserID = "user-123"

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	_ = dto.RegisterValidators()
	return gin.New()
}

// authed stands in for the auth middleware.
func authed(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	args := m.Called(username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(username, password)
	var user *models.User
	if u := args.Get(2); u != nil {
		user = u.(*models.User)
	}
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) MarkWatched(ctx context.Context, userID string, in service.MediaInput) (*models.WatchedItem, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchedItem), args.Error(1)
}

func (m *MockLibraryService) AddPlanned(ctx context.Context, userID string, in service.MediaInput) (*models.PlannedItem, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlannedItem), args.Error(1)
}

func (m *MockLibraryService) AddWatching(ctx context.Context, userID string, in service.MediaInput) (*models.WatchingItem, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchingItem), args.Error(1)
}

func (m *MockLibraryService) Remove(ctx context.Context, userID, bucket string, id int64, mediaType string) error {
	return m.Called(userID, bucket, id, mediaType).Error(0)
}

func (m *MockLibraryService) List(ctx context.Context, userID, bucket string) ([]service.LibraryItem, error) {
	args := m.Called(userID, bucket)
	items, _ := args.Get(0).([]service.LibraryItem)
	return items, args.Error(1)
}

func (m *MockLibraryService) Get(ctx context.Context, userID, bucket string, id int64, mediaType string) (*service.LibraryItem, error) {
	args := m.Called(userID, bucket, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LibraryItem), args.Error(1)
}

func (m *MockLibraryService) RateItem(ctx context.Context, userID string, id int64, mediaType string, rating float64) (*models.WatchedItem, error) {
	args := m.Called(userID, id, mediaType, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchedItem), args.Error(1)
}

func (m *MockLibraryService) Status(ctx context.Context, userID string, id int64, mediaType string) (*service.ItemStatus, error) {
	args := m.Called(userID, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ItemStatus), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) CalculateYearlyStats(ctx context.Context, userID string, year int) (*models.YearlyStats, error) {
	args := m.Called(userID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YearlyStats), args.Error(1)
}

func (m *MockStatsService) GetYearlyStats(ctx context.Context, userID string, year int) (*models.YearlyStats, error) {
	args := m.Called(userID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YearlyStats), args.Error(1)
}

func (m *MockStatsService) ListStatsYears(ctx context.Context, userID string) ([]int, error) {
	args := m.Called(userID)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *MockStatsService) GetLifetimeStats(ctx context.Context, userID string) (*models.YearlyStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YearlyStats), args.Error(1)
}

func (m *MockStatsService) RecalculateAll(ctx context.Context, userID string) ([]int, error) {
	args := m.Called(userID)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *MockStatsService) Invalidate(ctx context.Context, userID string, at ...time.Time) {
	m.Called(userID, at)
}

type MockTvService struct {
	mock.Mock
}

func (m *MockTvService) SetEpisodeWatched(ctx context.Context, userID string, showID int64, season, episode int, watched bool) (*models.TvShowProgress, error) {
	args := m.Called(userID, showID, season, episode, watched)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TvShowProgress), args.Error(1)
}

func (m *MockTvService) MarkSeasonWatched(ctx context.Context, userID string, showID int64, season int) (int, error) {
	args := m.Called(userID, showID, season)
	return args.Int(0), args.Error(1)
}

func (m *MockTvService) ShowProgress(ctx context.Context, userID string, showID int64) (*service.ShowProgress, error) {
	args := m.Called(userID, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShowProgress), args.Error(1)
}

func (m *MockTvService) SeasonEpisodes(ctx context.Context, userID string, showID int64, season int) ([]service.EpisodeStatus, error) {
	args := m.Called(userID, showID, season)
	eps, _ := args.Get(0).([]service.EpisodeStatus)
	return eps, args.Error(1)
}

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
	return m.TVDetails(ctx, id)
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
	res, _ := args.Get(0).([]tmdb.SearchResult)
	return res, args.Error(1)
}

func (m *MockMetadataClient) Credits(ctx context.Context, mediaType string, id int64) (*tmdb.Credits, error) {
	args := m.Called(mediaType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.Credits), args.Error(1)
}

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) ForUser(ctx context.Context, userID string, limit int) ([]tmdb.SearchResult, error) {
	args := m.Called(userID, limit)
	res, _ := args.Get(0).([]tmdb.SearchResult)
	return res, args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, n *models.Notification) error {
	return m.Called(n).Error(0)
}

func (m *MockNotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(userID, unreadOnly)
	ns, _ := args.Get(0).([]models.Notification)
	return ns, args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockFriendService struct {
	mock.Mock
}

func (m *MockFriendService) SendRequest(ctx context.Context, fromUserID, toUsername string) (*models.FriendRequest, error) {
	args := m.Called(fromUserID, toUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockFriendService) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	rs, _ := args.Get(0).([]models.FriendRequest)
	return rs, args.Error(1)
}

func (m *MockFriendService) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	rs, _ := args.Get(0).([]models.FriendRequest)
	return rs, args.Error(1)
}

func (m *MockFriendService) Accept(ctx context.Context, userID string, requestID int64) error {
	return m.Called(userID, requestID).Error(0)
}

func (m *MockFriendService) Decline(ctx context.Context, userID string, requestID int64) error {
	return m.Called(userID, requestID).Error(0)
}

func (m *MockFriendService) Cancel(ctx context.Context, userID string, requestID int64) error {
	return m.Called(userID, requestID).Error(0)
}

func (m *MockFriendService) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	args := m.Called(userID)
	fs, _ := args.Get(0).([]models.Friendship)
	return fs, args.Error(1)
}

func (m *MockFriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return m.Called(userID, friendID).Error(0)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Post(ctx context.Context, a *models.Activity) {
	m.Called(a)
}

func (m *MockActivityService) Feed(ctx context.Context, userID string, limit int, before time.Time) ([]models.Activity, error) {
	args := m.Called(userID, limit, before)
	as, _ := args.Get(0).([]models.Activity)
	return as, args.Error(1)
}

type MockFriendRecommendationService struct {
	mock.Mock
}

func (m *MockFriendRecommendationService) Send(ctx context.Context, fromUserID string, rec models.Recommendation) (*models.Recommendation, error) {
	args := m.Called(fromUserID, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recommendation), args.Error(1)
}

func (m *MockFriendRecommendationService) Inbox(ctx context.Context, userID string, unseenOnly bool) ([]models.Recommendation, error) {
	args := m.Called(userID, unseenOnly)
	rs, _ := args.Get(0).([]models.Recommendation)
	return rs, args.Error(1)
}

func (m *MockFriendRecommendationService) MarkSeen(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockFriendRecommendationService) Delete(ctx context.Context, userID string, id int64) error {
	return m.Called(userID, id).Error(0)
}

package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(svc *MockAuthService) http.Handler {
	router := setupRouter()
	NewAuthHandler(svc, 15*time.Minute).RegisterRoutes(router.Group("/api/auth"))
	return router
}

func TestRegister_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)

	user := &models.User{ID: "user-123", Username: "testuser", Email: "test@example.com"}
	mockAuthService.On("Register", "testuser", "password123", "test@example.com").Return(user, nil)

	w := doJSON(router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		Email:    "test@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]string
	require.NoError(t, decode(w, &response))
	assert.Equal(t, "user-123", response["user_id"])
	assert.Equal(t, "testuser", response["username"])
	mockAuthService.AssertExpectations(t)
}

func TestRegister_NameOrEmailInUse(t *testing.T) {
	for _, err := range []error{service.ErrNameInUse, service.ErrEmailInUse} {
		mockAuthService := new(MockAuthService)
		router := authRouter(mockAuthService)
		mockAuthService.On("Register", "testuser", "password123", "test@example.com").Return(nil, err)

		w := doJSON(router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Username: "testuser",
			Password: "password123",
			Email:    "test@example.com",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		var response map[string]string
		require.NoError(t, decode(w, &response))
		assert.Equal(t, "Account creation failed", response["error"])
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)

	w := doJSON(router, http.MethodPost, "/api/auth/register", "invalid json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)

	w := doJSON(router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Username: "testuser",
		Password: "short",
		Email:    "test@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)

	user := &models.User{ID: "68f3b8be-5bd8-4c6c-9919-a4614b2731b3", Username: "cinephile"}
	mockAuthService.On("Login", "cinephile", "popcorn123").Return("access-token", "refresh-token", user, nil)

	w := doJSON(router, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "cinephile", Password: "popcorn123"})

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.AuthResponse
	require.NoError(t, decode(w, &response))
	assert.Equal(t, "access-token", response.AccessToken)
	assert.Equal(t, "refresh-token", response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, user.ID, response.UserID)
	assert.Equal(t, int64(900), response.ExpiresIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)
	mockAuthService.On("Login", "cinephile", "wrong").Return("", "", nil, service.ErrInvalidCredentials)

	w := doJSON(router, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "cinephile", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_StoreFailure(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)
	mockAuthService.On("Login", "cinephile", "popcorn123").Return("", "", nil, errors.New("db down"))

	w := doJSON(router, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "cinephile", Password: "popcorn123"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRefreshToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)
	mockAuthService.On("RefreshAccessToken", "old").Return("new-access", "new-refresh", nil)
	mockAuthService.On("RefreshAccessToken", "revoked").Return("", "", service.ErrInvalidToken)

	w := doJSON(router, http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "old"})
	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.RefreshResponse
	require.NoError(t, decode(w, &response))
	assert.Equal(t, "new-access", response.AccessToken)
	assert.Equal(t, "new-refresh", response.RefreshToken)

	w = doJSON(router, http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "revoked"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := authRouter(mockAuthService)
	mockAuthService.On("Logout", "unknown").Return(service.ErrInvalidToken)

	w := doJSON(router, http.MethodPost, "/api/auth/logout", dto.RefreshTokenRequest{RefreshToken: "unknown"})

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuthService.AssertExpectations(t)
}

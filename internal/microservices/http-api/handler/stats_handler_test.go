package handler

import (
	"net/http"
	"testing"

	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsRouter(svc *MockStatsService) http.Handler {
	router := setupRouter()
	NewStatsHandler(svc).RegisterRoutes(router.Group("/api/stats", authed(testUserID)))
	return router
}

func TestStats_Years(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("ListStatsYears", testUserID).Return([]int{2024, 2023}, nil)

	w := doJSON(statsRouter(svc), http.MethodGet, "/api/stats/years", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Years []int `json:"years"`
	}
	require.NoError(t, decode(w, &response))
	assert.Equal(t, []int{2024, 2023}, response.Years)
}

func TestStats_YearDecodesMonthlyBreakdown(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("GetYearlyStats", testUserID, 2024).Return(&models.YearlyStats{
		UserID:             testUserID,
		Year:               2024,
		TotalMoviesWatched: 3,
		MonthlyBreakdown:   "[1,0,0,0,0,0,0,0,0,0,0,2]",
	}, nil)

	w := doJSON(statsRouter(svc), http.MethodGet, "/api/stats/years/2024", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Year               int   `json:"year"`
		TotalMoviesWatched int   `json:"total_movies_watched"`
		MonthlyBreakdown   []int `json:"monthly_breakdown"`
	}
	require.NoError(t, decode(w, &response))
	assert.Equal(t, 2024, response.Year)
	assert.Equal(t, 3, response.TotalMoviesWatched)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}, response.MonthlyBreakdown)
}

func TestStats_YearOutOfRange(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("GetYearlyStats", testUserID, 1800).Return(nil, service.ErrInvalidYear)

	w := doJSON(statsRouter(svc), http.MethodGet, "/api/stats/years/1800", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(statsRouter(svc), http.MethodGet, "/api/stats/years/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats_Recalculate(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("CalculateYearlyStats", testUserID, 2023).Return(&models.YearlyStats{Year: 2023}, nil)

	w := doJSON(statsRouter(svc), http.MethodPost, "/api/stats/years/2023/recalculate", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestStats_Lifetime(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("GetLifetimeStats", testUserID).Return(&models.YearlyStats{Year: 0, TotalMoviesWatched: 40}, nil)

	w := doJSON(statsRouter(svc), http.MethodGet, "/api/stats/lifetime", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.StatsResponse
	require.NoError(t, decode(w, &response))
	assert.Equal(t, 40, response.TotalMoviesWatched)
	assert.Len(t, response.MonthlyBreakdown, 12)
}

package dto

import "cinetrack/internal/microservices/http-api/models"

// StatsResponse exposes the stored row with the monthly breakdown decoded.
type StatsResponse struct {
	models.YearlyStats
	MonthlyBreakdown []int `json:"monthly_breakdown"`
}

func NewStatsResponse(s *models.YearlyStats) StatsResponse {
	return StatsResponse{YearlyStats: *s, MonthlyBreakdown: s.Months()}
}

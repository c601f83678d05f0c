package handler

import (
	"errors"
	"net/http"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/middleware/auth"
	"cinetrack/internal/microservices/http-api/repository"
	"cinetrack/internal/microservices/http-api/service"
	"cinetrack/internal/tmdb"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidBucket),
		errors.Is(err, service.ErrInvalidMediaType),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrMissingTitle),
		errors.Is(err, service.ErrInvalidEpisode),
		errors.Is(err, service.ErrInvalidYear),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrSelfRequest),
		errors.Is(err, service.ErrNotFriends),
		errors.Is(err, tmdb.ErrInvalidMedium),
		errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotInLibrary),
		errors.Is(err, service.ErrRewatchNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrItemNotInCollection),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrRecommendationNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, tmdb.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrAlreadyInLibrary),
		errors.Is(err, service.ErrNotWatched),
		errors.Is(err, service.ErrCollectionExists),
		errors.Is(err, service.ErrItemInCollection),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrRequestExists),
		errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, tmdb.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Unmapped errors are logged and
// hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

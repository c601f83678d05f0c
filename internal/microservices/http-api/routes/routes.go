package routes

import (
	"context"
	"net/http"
	"time"

	"cinetrack/internal/app"
	"cinetrack/internal/metrics"
	"cinetrack/internal/microservices/http-api/handler"
	"cinetrack/internal/microservices/http-api/middleware"
	"cinetrack/internal/microservices/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin engine with every API group mounted.
func SetupRoutes(a *app.App) *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(a.Config.CORSOrigins))
	router.Use(middleware.SecurityHeaders())
	if a.Config.PrometheusEnabled {
		router.Use(metrics.GinMiddleware())
		router.GET("/metrics", metrics.Handler())
	}

	router.GET("/health", health(a))

	svc := a.Services
	api := router.Group("/api")

	handler.NewAuthHandler(svc.Auth, a.Config.AccessTokenTTL).RegisterRoutes(api.Group("/auth"))

	api.GET("/feed/live", websocket.WSHandler(a.Hub, svc.Auth))

	protected := api.Group("", middleware.AuthMiddleware(svc.Auth))

	handler.NewLibraryHandler(svc.Library).RegisterRoutes(protected.Group("/library"))
	handler.NewRewatchHandler(svc.Rewatch).RegisterRoutes(protected.Group("/rewatches"))
	handler.NewTvHandler(svc.Episodes).RegisterRoutes(protected.Group("/tv"))
	handler.NewStatsHandler(svc.Stats).RegisterRoutes(protected.Group("/stats"))
	handler.NewCollectionHandler(svc.Collections).RegisterRoutes(protected.Group("/collections"))
	handler.NewNotificationHandler(svc.Notifications).RegisterRoutes(protected.Group("/notifications"))

	meta := handler.NewMetadataHandler(a.TMDB, svc.Discover)
	meta.RegisterRoutes(protected.Group("/metadata"))

	recs := protected.Group("/recommendations")
	meta.RegisterDiscoverRoutes(recs)

	social := handler.NewSocialHandler(svc.Friends, svc.FriendRecommendations, svc.Activity)
	social.RegisterInboxRoutes(recs)
	social.RegisterFriendRoutes(protected.Group("/friends"))
	social.RegisterRequestRoutes(protected.Group("/friend-requests"))
	social.RegisterFeedRoutes(protected.Group("/feed"))

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.POST("/tv/check-updates", checkUpdates(a))

	return router
}

func health(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "cache": "ok", "live_clients": a.Hub.ClientCount()}
		code := http.StatusOK

		if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if a.Cache == nil {
			status["cache"] = "disabled"
		} else if err := a.Cache.Ping(ctx); err != nil {
			status["cache"] = "unreachable"
		}
		c.JSON(code, status)
	}
}

// checkUpdates runs one TV update pass on demand.
func checkUpdates(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
		defer cancel()

		report, err := a.Services.TvUpdates.CheckAll(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

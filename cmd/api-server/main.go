package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinetrack/internal/app"
	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/dto"
	"cinetrack/internal/microservices/http-api/routes"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		logging.Fatal().Err(err).Msg("failed to register validators")
	}

	a, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialise application")
	}
	defer a.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go a.Hub.Run(ctx)
	if cfg.TMDBAPIKey != "" && cfg.TVUpdateInterval > 0 {
		go a.Services.TvUpdates.Run(ctx, cfg.TVUpdateInterval)
	} else {
		logging.Warn().Msg("tv update checker disabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      routes.SetupRoutes(a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", server.Addr).Str("env", cfg.GoEnv).Msg("api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down")

	// stop the hub and update checker; Shutdown does not track hijacked sockets
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("forced shutdown")
	}
	logging.Info().Msg("server stopped")
}

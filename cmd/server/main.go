package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/swiftbrowser/internal/api"
	"github.com/andresuchdata/swiftbrowser/internal/cache"
	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/metrics"
	"github.com/andresuchdata/swiftbrowser/internal/service"
	"github.com/andresuchdata/swiftbrowser/internal/session"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	connector := swift.NewConnector(cfg.Swift, swift.WithMetrics(m))

	listingCache, err := cache.NewListingCache(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize listing cache")
	}

	sessions, err := session.NewStore(cfg.Session, cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize session store")
	}

	router, err := api.NewRouter(&api.Services{
		Storage:  service.NewStorageService(connector, listingCache, cfg),
		Sessions: sessions,
		Metrics:  m,
	}, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up router")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("auth_url", cfg.Swift.AuthURL).
			Int("auth_version", cfg.Swift.AuthVersion).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

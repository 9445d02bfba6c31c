package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/config"
	"inkwell/config/database"
	"inkwell/internal/auth/repository"
	"inkwell/internal/auth/service"
	"inkwell/internal/auth/token"
	"inkwell/internal/suggest/client"
	"inkwell/pkg/logger"
	"inkwell/router"
	"inkwell/socket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if !cfg.DotEnvLoaded {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect(cfg.Database.DSN())
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Sugar.Fatalf("Failed to migrate database: %v", err)
	}

	// Refresh tokens are only issued when Redis is configured.
	var refresh service.RefreshStore
	checks := map[string]router.Pinger{}
	if cfg.RedisURL != "" {
		repo, err := repository.NewRefreshRepository(cfg.RedisURL)
		if err != nil {
			logger.Sugar.Fatalf("Failed to connect to redis: %v", err)
		}
		defer repo.Close()
		refresh = repo
		checks["redis"] = repo
	} else {
		logger.Sugar.Info("REDIS_URL not set, refresh tokens disabled")
	}

	if cfg.LLM.APIKey == "" {
		logger.Sugar.Warn("LLM_API_KEY not set, suggestions will fail upstream")
	}

	hub := socket.NewHub()
	go hub.Run()
	defer hub.Stop()

	handler := router.Setup(router.Deps{
		DB:         db,
		Hub:        hub,
		Tokens:     token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL),
		Refresh:    refresh,
		RefreshTTL: cfg.Auth.RefreshTTL,
		LLM: client.New(client.Options{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}),
		CORSOrigin: cfg.CORSOrigin,
		Checks:     checks,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Go Backend listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/timmy/promptgen/internal/api"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/filename"
	"github.com/timmy/promptgen/internal/logger"
	"github.com/timmy/promptgen/internal/repository"
	"github.com/timmy/promptgen/internal/service"
	"github.com/timmy/promptgen/internal/storage"
	"golang.org/x/time/rate"
)

func main() {
	// Initialize logger
	log := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize storage (local disk, R2, S3, MinIO)
	objectStorage, err := storage.NewStorage(storage.ConfigFrom(&cfg.Storage))
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := storage.EnsureReady(ctx, objectStorage); err != nil {
		log.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	generationRepo := repository.NewGenerationRepository(db)

	// Initialize services
	vlmService := service.NewVLMService(&service.VLMConfig{
		Provider:  cfg.VLM.Provider,
		Model:     cfg.VLM.Model,
		APIKey:    cfg.VLM.APIKey,
		BaseURL:   cfg.VLM.BaseURL,
		Timeout:   cfg.VLM.Timeout,
		MaxTokens: cfg.VLM.MaxTokens,
	})
	if cfg.VLM.APIKey == "" {
		log.WithField("provider", vlmService.Provider()).Warn("No VLM API key configured; generation requests will fail")
	}

	authService := service.NewAuthService(userRepo, &service.AuthConfig{
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
	})

	generationService := service.NewPromptGenerationService(
		filename.New(),
		storage.NewBlobStore(objectStorage, cfg.Storage.Namespace),
		vlmService,
		generationRepo,
		&service.PromptGenerationConfig{MaxUploadBytes: cfg.Upload.MaxBytes()},
	)

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(ctx, rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	routerCfg := &api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Limiter: limiter,
		PageLimits: domain.PageLimits{
			DefaultSize: cfg.Pagination.DefaultPerPage,
			MaxSize:     cfg.Pagination.MaxPerPage,
		},
		PostLimits: domain.PageLimits{
			DefaultSize: cfg.Pagination.PostsPerPage,
			MaxSize:     cfg.Pagination.MaxPerPage,
		},
		Logger: log,
	}
	// Local uploads are served by this process when the public URL is a path
	if cfg.Storage.Type == string(storage.StorageTypeLocal) && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		routerCfg.StaticPath = cfg.Storage.PublicURL
		routerCfg.StaticRoot = cfg.Storage.LocalRoot
	}

	// Setup router
	router := api.SetupRouter(&api.Services{
		DB:          db,
		Auth:        authService,
		Generations: generationService,
		Posts:       service.NewPostService(postRepo),
		VLM:         vlmService,
	}, routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logger.Fields{
			"port":     cfg.Server.Port,
			"mode":     cfg.Server.Mode,
			"storage":  cfg.Storage.Type,
			"provider": vlmService.Provider(),
			"model":    vlmService.GetModel(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exited")
}

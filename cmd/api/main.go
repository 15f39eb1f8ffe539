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

	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/cache"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/config"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/media"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/queue"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/tracing"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/upload"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	tracer, err := tracing.Init(cfg.Tracing)
	if err != nil {
		logger.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer tracer.Close()

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	repo := database.NewRepository(db)

	// Initialize storage
	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Redis backs toggle locks, the stats cache and login throttling
	var (
		locker     service.Locker = service.NoopLocker{}
		statsCache service.StatsCache
		throttle   middleware.RateChecker
	)
	if cfg.RedisEnabled() {
		c, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer c.Close()
		locker, statsCache, throttle = c, c, c
	} else {
		logger.Warn("Redis disabled, toggles run without locks and stats are not cached")
	}

	// Side effects go to the queue when one is configured, otherwise they
	// are applied in-process
	var events service.Dispatcher
	if cfg.QueueEnabled() {
		q, err := queue.New(cfg.Queue)
		if err != nil {
			logger.Fatalf("Failed to connect to queue: %v", err)
		}
		defer q.Close()
		events = q
	} else {
		events = service.NewInlineDispatcher(service.NewProcessor(repo, stor))
		logger.Warn("Queue disabled, side effects run in-process")
	}

	tokens := auth.NewTokenManager(cfg.Auth)
	prober := media.NewProber(cfg.Media.FFprobePath)

	stager, err := upload.NewStager(cfg.Media.TempDir, cfg.Server.MaxUploadSize)
	if err != nil {
		logger.Fatalf("Failed to prepare upload staging: %v", err)
	}

	api := &API{
		health: map[string]healthChecker{
			"database": db,
			"storage":  stor,
		},
		users:         service.NewUserService(repo, tokens, stor, events, cfg.Auth.BcryptCost),
		videos:        service.NewVideoService(repo, stor, prober, events),
		comments:      service.NewCommentService(repo),
		likes:         service.NewLikeService(repo, locker, cfg.Cache.ToggleLockTTL),
		playlists:     service.NewPlaylistService(repo),
		subscriptions: service.NewSubscriptionService(repo, locker, cfg.Cache.ToggleLockTTL),
		tweets:        service.NewTweetService(repo),
		dashboard:     service.NewDashboardService(repo, statsCache, cfg.Cache.StatsTTL),
		cookies: cookieSettings{
			secure:     cfg.Auth.SecureCookies,
			accessTTL:  tokens.AccessTTL(),
			refreshTTL: tokens.RefreshTTL(),
		},
		uploads: uploadSettings{
			stager:  stager,
			maxSize: cfg.Server.MaxUploadSize,
		},
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx, time.Minute)
	go stager.CleanupExpired(logger.WithContext(ctx), 10*time.Minute, upload.DefaultMaxAge)

	router := setupRouter(api, routerOptions{
		logger:         logger,
		tokens:         tokens,
		limiter:        limiter,
		throttle:       throttle,
		loginAttempts:  cfg.RateLimit.LoginAttempts,
		loginWindow:    cfg.RateLimit.LoginWindow,
		requestTimeout: cfg.Server.RequestTimeout,
	})

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr("Server forced to shutdown", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithErr("Metrics server forced to shutdown", err)
		}
	}

	logger.Info("Server stopped")
}

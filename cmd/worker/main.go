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

	"github.com/therealutkarshpriyadarshi/vidshare/internal/config"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/queue"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/tracing"
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
	logger = logger.WithField("component", "worker")

	if !cfg.QueueEnabled() {
		logger.Fatalf("Worker requires queue.host to be configured")
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

	repo := database.NewRepository(db)

	// Initialize storage
	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
	}

	processor := service.NewProcessor(repo, stor)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	done, err := q.Consume(ctx, cfg.Queue.Prefetch, processor.Handle)
	if err != nil {
		logger.Fatalf("Failed to consume events: %v", err)
	}
	logger.Info("Worker started, waiting for events...")

	go reportQueueDepth(ctx, q, logger)

	// Wait for the consumer to drain
	<-done

	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stop()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithErr("Metrics server forced to shutdown", err)
		}
	}

	logger.Info("Worker stopped")
}

// reportQueueDepth logs the backlog of the events and dead-letter queues
func reportQueueDepth(ctx context.Context, q *queue.Queue, logger *logging.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events, err := q.GetQueueDepth()
			if err != nil {
				logger.WarnWithErr("failed to read queue depth", err)
				continue
			}
			dead, err := q.GetDLQDepth()
			if err != nil {
				logger.WarnWithErr("failed to read dead-letter queue depth", err)
				continue
			}
			logger.WithFields(map[string]interface{}{
				"pending":       events,
				"dead_lettered": dead,
			}).Info("queue depth")
		}
	}
}

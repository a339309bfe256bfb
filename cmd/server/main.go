// @title llmbroker API
// @version 1.0
// @description Turns input fields and an optional attachment into an LLM request and returns structured rows projected from the answer.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "llmbroker/docs"
	"llmbroker/internal/cache"
	"llmbroker/internal/config"
	"llmbroker/internal/document"
	"llmbroker/internal/handler"
	"llmbroker/internal/llm/openai"
	"llmbroker/internal/logging"
	"llmbroker/internal/port"
	"llmbroker/internal/repository/memory"
	"llmbroker/internal/repository/postgres"
	"llmbroker/internal/router"
	"llmbroker/internal/service"
	s3storage "llmbroker/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Optional .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cache store
	store, cleanup, err := newCacheStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger.Info("cache store ready", "backend", cfg.Cache.Backend, "enabled", cfg.Cache.Enabled)

	if cfg.Broker.APIKey == "" {
		logger.Warn("LLMBROKER_BROKER_API_KEY is not set; model calls will be rejected upstream")
	}
	if len(cfg.Broker.OutputFields) == 0 {
		logger.Warn("LLMBROKER_BROKER_OUTPUT_FIELDS is empty; rows will only carry the full response")
	}

	// Initialize services
	responses := cache.NewService(store, cfg.Broker.InstanceID, logger)
	normalizer := document.NewNormalizer(document.Options{
		CSVAsMarkdown: cfg.Attachment.CSVAsMarkdown,
		MaxBytes:      cfg.Attachment.MaxBytes(),
	})
	transport := openai.NewClient(&cfg.Broker)
	brokerSvc := service.NewBrokerService(&cfg.Broker, &cfg.Cache, transport, responses, normalizer, logger)

	// Initialize handlers
	brokerH := handler.NewBrokerHandler(brokerSvc, cfg.Broker.InstanceID)
	healthH := handler.NewHealthHandler(brokerSvc)

	// Setup router
	r := router.Setup(cfg, logger, brokerH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "instance", cfg.Broker.InstanceID, "model", cfg.Broker.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newCacheStore(ctx context.Context, cfg *config.Config) (port.CacheStore, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendPostgres:
		pool, err := postgres.NewPool(ctx, &cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewCacheRepo(pool), pool.Close, nil
	case config.CacheBackendS3:
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return s3storage.NewCacheStore(s3Client, cfg.S3.Bucket, cfg.Cache.S3Prefix), func() {}, nil
	default:
		return memory.NewCacheStore(), func() {}, nil
	}
}

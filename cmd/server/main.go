package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocerysearch/internal/cache"
	"grocerysearch/internal/config"
	"grocerysearch/internal/handler"
	"grocerysearch/internal/logger"
	"grocerysearch/internal/metrics"
	"grocerysearch/internal/repository"
	"grocerysearch/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// store is what the server needs from a repository backend
type store interface {
	service.ProductStore
	service.SearchLogger
	service.EmbeddingStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	zapLogger.Info("grocery search starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)
	metrics.Register()

	repo, ready, closeStore, err := openStore(cfg, zapLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	searchService := service.NewSearchService(repo, zapLogger).
		WithResultLimit(cfg.Search.ResultLimit).
		WithEmbeddingStore(repo)
	if cfg.Search.LogSearches {
		searchService.WithSearchLogger(repo)
	}

	if cfg.Cache.Enabled() {
		categoryCache, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		})
		if err != nil {
			// the cache is optional; serve straight from the store
			zapLogger.Warn("redis unavailable, category cache disabled", zap.Error(err))
		} else {
			defer categoryCache.Close()
			searchService.WithCategoryCache(categoryCache)
			zapLogger.Info("category cache enabled", zap.String("addr", cfg.Cache.Addr))
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		SearchService:       searchService,
		Logger:              zapLogger,
		Build:               handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		EmbeddingDimensions: cfg.Embedding.Dimensions,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		AllowedMethods:      cfg.Server.AllowedMethods,
		AllowedHeaders:      cfg.Server.AllowedHeaders,
		Ready:               ready,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-quit:
		zapLogger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	zapLogger.Info("server stopped")
	return nil
}

// openStore connects the configured backend and returns it with a readiness probe and a closer
func openStore(cfg *config.Config, zapLogger *zap.Logger) (store, func(context.Context) error, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		repo := repository.NewMemoryRepository()
		if cfg.Store.SeedFile != "" {
			seeded, err := repository.NewMemoryRepositoryFromFile(cfg.Store.SeedFile)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
			repo = seeded
		}
		zapLogger.Info("using in-memory store", zap.String("seed_file", cfg.Store.SeedFile))
		return repo, nil, func() {}, nil

	default:
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		zapLogger.Info("connected to PostgreSQL database")

		if cfg.PostgreSQL.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := repo.Migrate(ctx); err != nil {
				_ = repo.Close()
				return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			zapLogger.Info("database schema up to date")
		}

		closer := func() {
			if err := repo.Close(); err != nil {
				zapLogger.Warn("failed to close database", zap.Error(err))
			}
		}
		return repo, repo.Ping, closer, nil
	}
}

package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"intelligence-layer/internal/adapter/cache"
	"intelligence-layer/internal/adapter/fetcher"
	"intelligence-layer/internal/adapter/genai"
	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/infra"
	"intelligence-layer/internal/infra/config"
	"intelligence-layer/internal/usecase"
	"intelligence-layer/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Cache          domain.CacheStore
	AnalyzeUsecase usecase.AnalyzeUsecase

	// Sweeper is nil for backends that expire entries on their own.
	Sweeper *worker.CacheSweeper

	closers []func()
}

// NewApplicationComponents wires all dependencies from config.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	components := &ApplicationComponents{}

	store, err := components.buildCache(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("cache backend: %w", err)
	}
	components.Cache = store

	client := genai.NewClient(cfg.APIKey, cfg.BaseURL, cfg.CallTimeout, log)
	caller := usecase.NewModelCaller(client, store, cfg.RateLimitRPM, cfg.MaxRetries, log)

	chunker := domain.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	serviceCfg := usecase.ServiceConfig{
		Model:           cfg.Model,
		FastModel:       cfg.FastModel,
		LargeInputBytes: cfg.LargeInputBytes,
		ChunkCap:        cfg.ChunkCap,
	}

	downloader := fetcher.New(cfg.DownloadTimeout, cfg.DownloadRetries, cfg.MaxFileSizeBytes, log)

	components.AnalyzeUsecase = usecase.NewAnalyzeUsecase(
		downloader,
		domain.NewFingerprintPolicy(),
		store,
		usecase.NewSummaryService(caller, chunker, serviceCfg, log),
		usecase.NewRecommendationService(caller, chunker, serviceCfg, log),
		usecase.NewVisualsService(caller, chunker, serviceCfg, log),
		cfg.MaxFileSizeBytes,
		cfg.MaxWorkers,
		log,
	)
	return components, nil
}

// buildCache selects the cache backend: a disk store (default) or a postgres
// store, both fronted by an in-memory LRU and swept periodically.
func (c *ApplicationComponents) buildCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.CacheStore, error) {
	switch cfg.CacheBackend {
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err := infra.NewPostgresDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)

		store := cache.NewPostgresStore(pool, cfg.CacheTTL, log)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		c.Sweeper = worker.NewCacheSweeper(func(time.Time) (int, error) {
			removed, err := store.DeleteExpired(context.Background())
			return int(removed), err
		}, cfg.CacheTTL, log)
		return cache.NewLayeredStore(store, cfg.CacheEntries, cfg.CacheTTL), nil

	default:
		store, err := cache.NewDiskStore(cfg.CacheDir, cfg.CacheTTL, log)
		if err != nil {
			return nil, err
		}
		c.Sweeper = worker.NewCacheSweeper(store.SweepExpired, cfg.CacheTTL, log)
		return cache.NewLayeredStore(store, cfg.CacheEntries, cfg.CacheTTL), nil
	}
}

// Close releases pooled resources.
func (c *ApplicationComponents) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
}

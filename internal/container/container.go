package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"namematcher/database"
	"namematcher/extractors"
	"namematcher/internal/config"
	"namematcher/registry"
)

// memoryCacheCleanupInterval период очистки просроченных записей кэша в памяти
const memoryCacheCleanupInterval = 10 * time.Minute

// Container контейнер зависимостей: хранилище, кэш, реестр и сегментатор.
// Управляет их жизненным циклом.
type Container struct {
	mu sync.Mutex

	Config *config.Config

	// Store открывается для истории пакетов или для кэша sqlite
	Store     *database.Store
	Cache     registry.Cache
	Lookup    registry.Lookup
	Segmenter *extractors.Segmenter

	batchHistory bool
	initialized  bool
	closers      []func() error
	logger       *slog.Logger
}

// Option настройка контейнера
type Option func(*Container)

// WithBatchHistory открывает хранилище независимо от бэкенда кэша
func WithBatchHistory() Option {
	return func(c *Container) {
		c.batchHistory = true
	}
}

// NewContainer создает новый контейнер зависимостей
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		logger: slog.Default().With("component", "container"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Initialize инициализирует зависимости: хранилище, кэш, реестр, сегментатор.
// При ошибке уже открытые ресурсы закрываются.
func (c *Container) Initialize(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return fmt.Errorf("container already initialized")
	}

	defer func() {
		if err != nil {
			if closeErr := c.closeLocked(); closeErr != nil {
				c.logger.Warn("Failed to release resources after init error", "error", closeErr)
			}
		}
	}()

	if err := c.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize lookup cache: %w", err)
	}
	if err := c.initRegistry(ctx); err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	if err := c.initSegmenter(); err != nil {
		return fmt.Errorf("failed to initialize segmenter: %w", err)
	}

	c.initialized = true
	c.logger.Info("Container initialized",
		"providers", c.Config.RegistryProviders,
		"cache_backend", c.Config.LookupCache.Backend,
		"store", c.Store != nil)
	return nil
}

func (c *Container) initStore(ctx context.Context) error {
	if !c.batchHistory && c.Config.LookupCache.Backend != config.CacheBackendSQLite {
		return nil
	}

	store, err := database.NewStore(ctx, c.Config.DatabasePath)
	if err != nil {
		return err
	}
	c.Store = store
	c.closers = append(c.closers, store.Close)
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	cacheConfig := c.Config.LookupCache

	switch cacheConfig.Backend {
	case config.CacheBackendMemory:
		cache := registry.NewMemoryCache(registry.CacheConfig{
			Enabled:         true,
			TTL:             cacheConfig.TTL,
			CleanupInterval: memoryCacheCleanupInterval,
		})
		c.Cache = cache
		c.closers = append(c.closers, func() error {
			cache.Close()
			return nil
		})
	case config.CacheBackendSQLite:
		c.Cache = c.Store
	case config.CacheBackendRedis:
		cache, err := registry.NewRedisCache(ctx, registry.RedisOptions{
			Addr:     cacheConfig.RedisAddr,
			Password: cacheConfig.RedisPassword,
			DB:       cacheConfig.RedisDB,
		})
		if err != nil {
			return err
		}
		c.Cache = cache
		c.closers = append(c.closers, cache.Close)
	case config.CacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend: %s", cacheConfig.Backend)
	}
	return nil
}

func (c *Container) initRegistry(ctx context.Context) error {
	lookup, err := registry.NewLookup(ctx, c.Config.RegistryConfig(c.Cache))
	if err != nil {
		return err
	}
	c.Lookup = lookup
	return nil
}

func (c *Container) initSegmenter() error {
	opts, err := c.Config.SegmenterOptions()
	if err != nil {
		return err
	}
	segmenter, err := extractors.NewSegmenter(opts)
	if err != nil {
		return err
	}
	c.Segmenter = segmenter
	return nil
}

// Close освобождает ресурсы в порядке, обратном открытию
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Container) closeLocked() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	c.initialized = false
	return errors.Join(errs...)
}

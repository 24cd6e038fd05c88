package registry

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Cache хранилище результатов поиска. Найденное значение с record == nil
// означает закэшированный ответ "не найдено".
type Cache interface {
	Get(ctx context.Context, key string) (record *Record, found bool, err error)
	Set(ctx context.Context, key string, record *Record, ttl time.Duration) error
}

// CacheKey ключ кэша: провайдер и название без учета регистра
func CacheKey(provider, name string) string {
	return provider + ":" + strings.ToLower(strings.TrimSpace(name))
}

// CacheConfig настройки кэша в памяти
type CacheConfig struct {
	Enabled         bool
	TTL             time.Duration
	CleanupInterval time.Duration
}

// CacheStats статистика кэша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

type cacheEntry struct {
	record    *Record
	expiresAt time.Time
}

// MemoryCache кэш результатов в памяти процесса с TTL
type MemoryCache struct {
	config CacheConfig
	data   map[string]*cacheEntry
	mutex  sync.RWMutex
	stats  CacheStats
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryCache создает кэш и запускает периодическую очистку
func NewMemoryCache(config CacheConfig) *MemoryCache {
	cache := &MemoryCache{
		config: config,
		data:   make(map[string]*cacheEntry),
		stop:   make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go cache.startCleanup()
	}

	return cache
}

// Get возвращает запись из кэша
func (c *MemoryCache) Get(_ context.Context, key string) (*Record, bool, error) {
	if !c.config.Enabled {
		c.mutex.Lock()
		c.stats.Misses++
		c.mutex.Unlock()
		return nil, false, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.data[key]
	if !exists || time.Now().After(entry.expiresAt) {
		c.stats.Misses++
		return nil, false, nil
	}

	c.stats.Hits++
	return entry.record.Clone(), true, nil
}

// Set сохраняет запись; ttl <= 0 означает TTL из конфигурации
func (c *MemoryCache) Set(_ context.Context, key string, record *Record, ttl time.Duration) error {
	if !c.config.Enabled {
		return nil
	}
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		record:    record.Clone(),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Stats возвращает копию статистики
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// Close останавливает фоновую очистку
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}

// CachedLookup декоратор, кэширующий ответы реестра (включая "не найдено").
// Ошибки реестра не кэшируются; ошибки кэша только логируются.
type CachedLookup struct {
	next     Lookup
	cache    Cache
	provider string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCachedLookup оборачивает next кэшем
func NewCachedLookup(next Lookup, cache Cache, provider string, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		next:     next,
		cache:    cache,
		provider: provider,
		ttl:      ttl,
		logger:   slog.Default().With("component", "lookup_cache", "provider", provider),
	}
}

// Lookup сначала ищет в кэше, затем в реестре
func (l *CachedLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	key := CacheKey(l.provider, name)

	record, found, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("Lookup cache read failed", "key", key, "error", err.Error())
	} else if found {
		return record, nil
	}

	record, err = l.next.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, key, record, l.ttl); err != nil {
		l.logger.Warn("Lookup cache write failed", "key", key, "error", err.Error())
	}
	return record, nil
}

// LookupAll при limit > 1 идет в реестр мимо кэша: кэш хранит одну запись на название
func (l *CachedLookup) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	if limit > 1 {
		return lookupAll(ctx, l.next, name, limit)
	}
	record, err := l.Lookup(ctx, name)
	if err != nil || record == nil {
		return nil, err
	}
	return []Record{*record}, nil
}

// MaxConcurrency наследует бюджет обернутого реестра
func (l *CachedLookup) MaxConcurrency() int {
	return maxConcurrencyOf(l.next)
}

func maxConcurrencyOf(lookup Lookup) int {
	if advertiser, ok := lookup.(ConcurrencyAdvertiser); ok {
		return advertiser.MaxConcurrency()
	}
	return 1
}

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "namematcher:lookup:"

// RedisCache общий кэш результатов поиска для нескольких экземпляров сервиса
type RedisCache struct {
	client *redis.Client
	prefix string
}

// redisEnvelope сохраняет и найденную запись, и ответ "не найдено"
type redisEnvelope struct {
	Found  bool    `json:"found"`
	Record *Record `json:"record,omitempty"`
}

// RedisOptions параметры подключения
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return NewRedisCacheFromClient(client, opts.Prefix), nil
}

// NewRedisCacheFromClient использует готовый клиент
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get читает запись
func (c *RedisCache) Get(ctx context.Context, key string) (*Record, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var envelope redisEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached record: %w", err)
	}
	if !envelope.Found {
		return nil, true, nil
	}
	return envelope.Record, true, nil
}

// Set сохраняет запись с TTL
func (c *RedisCache) Set(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	data, err := json.Marshal(redisEnvelope{Found: record != nil, Record: record})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close закрывает соединение
func (c *RedisCache) Close() error {
	return c.client.Close()
}

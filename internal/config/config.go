package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"namematcher/extractors"
	"namematcher/matching"
	"namematcher/registry"
)

// Бэкенды кэша ответов реестра
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config конфигурация сервиса и CLI
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База данных (кэш и история пакетов)
	DatabasePath string `json:"database_path"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Сегментация
	Mode                    string `json:"mode"`
	CapitalizationMinLength int    `json:"capitalization_min_length"`

	// Сопоставление
	MinSimilarity     float64       `json:"min_similarity"`
	MaxResultsPerName int           `json:"max_results_per_name"`
	InterLookupDelay  time.Duration `json:"inter_lookup_delay"`
	Workers           int           `json:"workers"`
	LookupTimeout     time.Duration `json:"lookup_timeout"`

	// Реестры
	RegistryProviders []string             `json:"registry_providers"`
	OpenCorporates    OpenCorporatesConfig `json:"opencorporates"`
	Refinitiv         RefinitivConfig      `json:"refinitiv"`
	Retry             RetryConfig          `json:"retry"`
	CircuitBreaker    CircuitBreakerConfig `json:"circuit_breaker"`
	LookupCache       LookupCacheConfig    `json:"lookup_cache"`
}

// OpenCorporatesConfig настройки OpenCorporates
type OpenCorporatesConfig struct {
	BaseURL           string        `json:"base_url"`
	APIToken          string        `json:"-"`
	Timeout           time.Duration `json:"timeout"`
	RequestsPerMinute int           `json:"requests_per_minute"`
	MaxConcurrency    int           `json:"max_concurrency"`
}

// RefinitivConfig настройки Refinitiv
type RefinitivConfig struct {
	BaseURL      string        `json:"base_url"`
	TokenURL     string        `json:"token_url"`
	ClientID     string        `json:"-"`
	ClientSecret string        `json:"-"`
	Scopes       []string      `json:"scopes"`
	Timeout      time.Duration `json:"timeout"`
}

// RetryConfig повторы запросов к провайдерам
type RetryConfig struct {
	Attempts int           `json:"attempts"`
	Delay    time.Duration `json:"delay"`
}

// CircuitBreakerConfig предохранитель провайдеров
type CircuitBreakerConfig struct {
	Enabled          bool          `json:"enabled"`
	FailureThreshold int           `json:"failure_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// LookupCacheConfig кэш ответов реестра
type LookupCacheConfig struct {
	Backend       string        `json:"backend"`
	TTL           time.Duration `json:"ttl"`
	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"-"`
	RedisDB       int           `json:"redis_db"`
}

// LoadConfig загружает .env (если файлы есть) и читает конфигурацию из окружения.
// Переменные окружения имеют приоритет над .env.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	defaults := GetDefaults()
	config := &Config{
		// Сервер
		Port:         getEnv("SERVER_PORT", defaults.Port),
		DatabasePath: getEnv("DATABASE_PATH", defaults.DatabasePath),
		LogLevel:     getEnv("LOG_LEVEL", defaults.LogLevel),

		// Сегментация
		Mode:                    getEnv("MATCHER_MODE", defaults.Mode),
		CapitalizationMinLength: getEnvInt("MATCHER_CAPITALIZATION_MIN_LENGTH", defaults.CapitalizationMinLength),

		// Сопоставление
		MinSimilarity:     getEnvFloat("MATCHER_MIN_SIMILARITY", defaults.MinSimilarity),
		MaxResultsPerName: getEnvInt("MATCHER_MAX_RESULTS_PER_NAME", defaults.MaxResultsPerName),
		InterLookupDelay:  getEnvDuration("MATCHER_INTER_LOOKUP_DELAY", defaults.InterLookupDelay),
		Workers:           getEnvInt("MATCHER_WORKERS", defaults.Workers),
		LookupTimeout:     getEnvDuration("MATCHER_LOOKUP_TIMEOUT", defaults.LookupTimeout),

		// Реестры
		RegistryProviders: registry.ParseProviders(getEnv("REGISTRY_PROVIDER", strings.Join(defaults.RegistryProviders, ","))),
		OpenCorporates: OpenCorporatesConfig{
			BaseURL:           getEnv("OPENCORPORATES_URL", defaults.OpenCorporates.BaseURL),
			APIToken:          os.Getenv("OPENCORPORATES_API_TOKEN"),
			Timeout:           getEnvDuration("OPENCORPORATES_TIMEOUT", defaults.OpenCorporates.Timeout),
			RequestsPerMinute: getEnvInt("OPENCORPORATES_REQUESTS_PER_MINUTE", defaults.OpenCorporates.RequestsPerMinute),
			MaxConcurrency:    getEnvInt("OPENCORPORATES_MAX_CONCURRENCY", defaults.OpenCorporates.MaxConcurrency),
		},
		Refinitiv: RefinitivConfig{
			BaseURL:      getEnv("REFINITIV_BASE_URL", defaults.Refinitiv.BaseURL),
			TokenURL:     getEnv("REFINITIV_TOKEN_URL", defaults.Refinitiv.TokenURL),
			ClientID:     os.Getenv("REFINITIV_CLIENT_ID"),
			ClientSecret: os.Getenv("REFINITIV_CLIENT_SECRET"),
			Scopes:       splitList(getEnv("REFINITIV_SCOPES", strings.Join(defaults.Refinitiv.Scopes, ","))),
			Timeout:      getEnvDuration("REFINITIV_TIMEOUT", defaults.Refinitiv.Timeout),
		},
		Retry: RetryConfig{
			Attempts: getEnvInt("REGISTRY_RETRY_ATTEMPTS", defaults.Retry.Attempts),
			Delay:    getEnvDuration("REGISTRY_RETRY_DELAY", defaults.Retry.Delay),
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          getEnvBool("REGISTRY_CIRCUIT_BREAKER", defaults.CircuitBreaker.Enabled),
			FailureThreshold: getEnvInt("REGISTRY_CIRCUIT_FAILURES", defaults.CircuitBreaker.FailureThreshold),
			Timeout:          getEnvDuration("REGISTRY_CIRCUIT_TIMEOUT", defaults.CircuitBreaker.Timeout),
		},
		LookupCache: LookupCacheConfig{
			Backend:       strings.ToLower(getEnv("LOOKUP_CACHE_BACKEND", defaults.LookupCache.Backend)),
			TTL:           getEnvDuration("LOOKUP_CACHE_TTL", defaults.LookupCache.TTL),
			RedisAddr:     getEnv("REDIS_ADDR", defaults.LookupCache.RedisAddr),
			RedisPassword: os.Getenv("REDIS_PASS"),
			RedisDB:       getEnvInt("REDIS_DB", defaults.LookupCache.RedisDB),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SegmenterOptions параметры сегментации
func (c *Config) SegmenterOptions() (extractors.Options, error) {
	mode, err := extractors.ParseMode(c.Mode)
	if err != nil {
		return extractors.Options{}, err
	}
	opts := extractors.Options{
		Mode:                    mode,
		CapitalizationMinLength: c.CapitalizationMinLength,
	}
	return opts, opts.Validate()
}

// MatchingConfig параметры пакетного сопоставления
func (c *Config) MatchingConfig() matching.Config {
	return matching.Config{
		MinSimilarity:     c.MinSimilarity,
		MaxResultsPerName: c.MaxResultsPerName,
		InterLookupDelay:  c.InterLookupDelay,
		Workers:           c.Workers,
		LookupTimeout:     c.LookupTimeout,
	}
}

// RegistryConfig параметры фабрики реестров; cache == nil отключает кэширование
func (c *Config) RegistryConfig(cache registry.Cache) registry.FactoryConfig {
	return registry.FactoryConfig{
		Providers: c.RegistryProviders,
		OpenCorporates: registry.OpenCorporatesConfig{
			BaseURL:           c.OpenCorporates.BaseURL,
			APIToken:          c.OpenCorporates.APIToken,
			Timeout:           c.OpenCorporates.Timeout,
			RequestsPerMinute: c.OpenCorporates.RequestsPerMinute,
			MaxConcurrency:    c.OpenCorporates.MaxConcurrency,
		},
		Refinitiv: registry.RefinitivConfig{
			BaseURL:      c.Refinitiv.BaseURL,
			TokenURL:     c.Refinitiv.TokenURL,
			ClientID:     c.Refinitiv.ClientID,
			ClientSecret: c.Refinitiv.ClientSecret,
			Scopes:       c.Refinitiv.Scopes,
			Timeout:      c.Refinitiv.Timeout,
		},
		RetryAttempts:           c.Retry.Attempts,
		RetryDelay:              c.Retry.Delay,
		CircuitBreaker:          c.CircuitBreaker.Enabled,
		CircuitFailureThreshold: c.CircuitBreaker.FailureThreshold,
		CircuitTimeout:          c.CircuitBreaker.Timeout,
		Cache:                   cache,
		CacheTTL:                c.LookupCache.TTL,
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool или возвращает значение по умолчанию
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

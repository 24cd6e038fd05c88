package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"namematcher/extractors"
	"namematcher/matching"
	"namematcher/registry"
)

// Validate проверяет корректность конфигурации и перечисляет все найденные проблемы
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Сегментация
	if _, err := c.SegmenterOptions(); err != nil {
		errors = append(errors, err.Error())
	}

	// Сопоставление
	if err := c.MatchingConfig().Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	// Провайдеры
	if len(c.RegistryProviders) == 0 {
		errors = append(errors, "at least one registry provider is required")
	}
	for _, provider := range c.RegistryProviders {
		switch provider {
		case registry.ProviderOpenCorporates, registry.ProviderMock:
		case registry.ProviderRefinitiv:
			if c.Refinitiv.ClientID == "" || c.Refinitiv.ClientSecret == "" {
				errors = append(errors, "refinitiv provider requires REFINITIV_CLIENT_ID and REFINITIV_CLIENT_SECRET")
			}
		default:
			errors = append(errors, fmt.Sprintf("unknown registry provider: %s (valid: opencorporates, refinitiv, mock)", provider))
		}
	}
	if c.Retry.Attempts < 1 || c.Retry.Attempts > 10 {
		errors = append(errors, fmt.Sprintf("registry retry attempts must be between 1 and 10, got %d", c.Retry.Attempts))
	}
	if c.Retry.Attempts > 1 && c.Retry.Delay <= 0 {
		errors = append(errors, "registry retry delay must be positive")
	}
	if c.OpenCorporates.RequestsPerMinute < 0 {
		errors = append(errors, "opencorporates requests per minute must not be negative")
	}

	// Кэш
	switch c.LookupCache.Backend {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendNone:
	case CacheBackendRedis:
		if c.LookupCache.RedisAddr == "" {
			errors = append(errors, "redis cache backend requires REDIS_ADDR")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid lookup cache backend: %s (valid: memory, sqlite, redis, none)", c.LookupCache.Backend))
	}
	if c.LookupCache.Backend == CacheBackendSQLite && c.DatabasePath == "" {
		errors = append(errors, "sqlite cache backend requires DATABASE_PATH")
	}
	if c.LookupCache.Backend != CacheBackendNone && c.LookupCache.TTL < time.Second {
		errors = append(errors, "lookup cache TTL must be at least 1 second")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%w: %s", matching.ErrInvalidConfig, strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию по умолчанию
func GetDefaults() *Config {
	matchingDefaults := matching.DefaultConfig()
	segmenterDefaults := extractors.DefaultOptions()

	return &Config{
		Port:                    "8080",
		DatabasePath:            "namematcher.db",
		LogLevel:                "INFO",
		Mode:                    string(segmenterDefaults.Mode),
		CapitalizationMinLength: segmenterDefaults.CapitalizationMinLength,
		MinSimilarity:           matchingDefaults.MinSimilarity,
		MaxResultsPerName:       matchingDefaults.MaxResultsPerName,
		InterLookupDelay:        matchingDefaults.InterLookupDelay,
		Workers:                 matchingDefaults.Workers,
		LookupTimeout:           matchingDefaults.LookupTimeout,
		RegistryProviders:       []string{registry.ProviderOpenCorporates},
		OpenCorporates: OpenCorporatesConfig{
			BaseURL:           registry.DefaultOpenCorporatesURL,
			Timeout:           10 * time.Second,
			RequestsPerMinute: 0,
			MaxConcurrency:    1,
		},
		Refinitiv: RefinitivConfig{
			BaseURL:  "https://api.refinitiv.com/discovery/search/v1",
			TokenURL: "https://api.refinitiv.com/auth/oauth2/v1/token",
			Scopes:   []string{"trapi"},
			Timeout:  15 * time.Second,
		},
		Retry: RetryConfig{
			Attempts: registry.DefaultRetryAttempts,
			Delay:    registry.DefaultRetryDelay,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		},
		LookupCache: LookupCacheConfig{
			Backend:   CacheBackendMemory,
			TTL:       24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
	}
}

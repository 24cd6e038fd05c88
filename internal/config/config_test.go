package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namematcher/extractors"
	"namematcher/matching"
	"namematcher/registry"
)

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantError bool
	}{
		{"Valid DEBUG", "DEBUG", false},
		{"Valid INFO", "INFO", false},
		{"Valid WARN", "WARN", false},
		{"Valid ERROR", "ERROR", false},
		{"Valid lowercase debug", "debug", false},
		{"Invalid value", "INVALID", true},
		{"Empty string", "", false},
		{"Mixed case", "DeBuG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidate_AggregatesProblems(t *testing.T) {
	cfg := GetDefaults()
	cfg.Port = "70000"
	cfg.Mode = "greedy"
	cfg.MinSimilarity = 120
	cfg.RegistryProviders = []string{"dadata"}
	cfg.LookupCache.Backend = "memcached"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, matching.ErrInvalidConfig)

	msg := err.Error()
	assert.Contains(t, msg, "port must be between 1 and 65535")
	assert.Contains(t, msg, "unknown mode")
	assert.Contains(t, msg, "min_similarity")
	assert.Contains(t, msg, "unknown registry provider: dadata")
	assert.Contains(t, msg, "invalid lookup cache backend: memcached")
}

func TestConfigValidate_ProviderRequirements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "refinitiv without credentials",
			mutate:  func(c *Config) { c.RegistryProviders = []string{registry.ProviderRefinitiv} },
			wantErr: "REFINITIV_CLIENT_ID",
		},
		{
			name:    "no providers",
			mutate:  func(c *Config) { c.RegistryProviders = nil },
			wantErr: "at least one registry provider",
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.LookupCache.Backend = CacheBackendRedis
				c.LookupCache.RedisAddr = ""
			},
			wantErr: "REDIS_ADDR",
		},
		{
			name:    "short cache ttl",
			mutate:  func(c *Config) { c.LookupCache.TTL = time.Millisecond },
			wantErr: "TTL",
		},
		{
			name:    "retry attempts out of range",
			mutate:  func(c *Config) { c.Retry.Attempts = 0 },
			wantErr: "retry attempts",
		},
		{
			name:    "capitalization min length out of range",
			mutate:  func(c *Config) { c.CapitalizationMinLength = 2 },
			wantErr: "capitalization",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	require.NoError(t, cfg.Validate())

	opts, err := cfg.SegmenterOptions()
	require.NoError(t, err)
	assert.Equal(t, extractors.DefaultOptions(), opts)
	assert.Equal(t, matching.DefaultConfig(), cfg.MatchingConfig())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MATCHER_MODE", "aggressive")
	t.Setenv("MATCHER_MIN_SIMILARITY", "85.5")
	t.Setenv("MATCHER_CAPITALIZATION_MIN_LENGTH", "12")
	t.Setenv("MATCHER_INTER_LOOKUP_DELAY", "250ms")
	t.Setenv("MATCHER_WORKERS", "4")
	t.Setenv("REGISTRY_PROVIDER", "OpenCorporates, mock")
	t.Setenv("OPENCORPORATES_API_TOKEN", "token")
	t.Setenv("REGISTRY_CIRCUIT_BREAKER", "false")
	t.Setenv("REGISTRY_RETRY_ATTEMPTS", "5")
	t.Setenv("REGISTRY_RETRY_DELAY", "50ms")
	t.Setenv("LOOKUP_CACHE_BACKEND", "SQLite")
	t.Setenv("LOOKUP_CACHE_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 85.5, cfg.MinSimilarity)
	assert.Equal(t, 250*time.Millisecond, cfg.InterLookupDelay)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"opencorporates", "mock"}, cfg.RegistryProviders)
	assert.False(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, CacheBackendSQLite, cfg.LookupCache.Backend)

	opts, err := cfg.SegmenterOptions()
	require.NoError(t, err)
	assert.Equal(t, extractors.ModeAggressive, opts.Mode)
	assert.Equal(t, 12, opts.CapitalizationMinLength)

	factory := cfg.RegistryConfig(nil)
	assert.Equal(t, "token", factory.OpenCorporates.APIToken)
	assert.Equal(t, 2*time.Hour, factory.CacheTTL)
	assert.Nil(t, factory.Cache)
	assert.Equal(t, 5, factory.RetryAttempts)
	assert.Equal(t, 50*time.Millisecond, factory.RetryDelay)
}

func TestLoadConfig_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("MATCHER_WORKERS", "many")
	t.Setenv("MATCHER_MIN_SIMILARITY", "high")
	t.Setenv("MATCHER_INTER_LOOKUP_DELAY", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	defaults := GetDefaults()
	assert.Equal(t, defaults.Workers, cfg.Workers)
	assert.Equal(t, defaults.MinSimilarity, cfg.MinSimilarity)
	assert.Equal(t, defaults.InterLookupDelay, cfg.InterLookupDelay)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("MATCHER_MODE", "greedy")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, matching.ErrInvalidConfig)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	// Setenv регистрирует восстановление исходного (отсутствующего) значения после теста
	t.Setenv("MATCHER_MAX_RESULTS_PER_NAME", "")
	require.NoError(t, os.Unsetenv("MATCHER_MAX_RESULTS_PER_NAME"))
	t.Setenv("MATCHER_WORKERS", "2")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "MATCHER_MAX_RESULTS_PER_NAME=5\nMATCHER_WORKERS=8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxResultsPerName)
	assert.Equal(t, 2, cfg.Workers, "environment wins over .env")
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

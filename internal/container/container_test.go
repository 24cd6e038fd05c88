package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namematcher/database"
	"namematcher/internal/config"
	"namematcher/registry"
)

func testConfig(backend string) *config.Config {
	cfg := config.GetDefaults()
	cfg.RegistryProviders = []string{registry.ProviderMock}
	cfg.DatabasePath = ":memory:"
	cfg.LookupCache.Backend = backend
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil)
	assert.Error(t, err)
}

func TestInitialize_CacheBackends(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		opts      []Option
		wantStore bool
		wantCache registry.Cache
	}{
		{name: "memory", backend: config.CacheBackendMemory, wantCache: &registry.MemoryCache{}},
		{name: "sqlite", backend: config.CacheBackendSQLite, wantStore: true, wantCache: &database.Store{}},
		{name: "none", backend: config.CacheBackendNone},
		{name: "none with history", backend: config.CacheBackendNone, opts: []Option{WithBatchHistory()}, wantStore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(testConfig(tt.backend), tt.opts...)
			require.NoError(t, err)
			require.NoError(t, c.Initialize(context.Background()))
			defer c.Close()

			assert.Equal(t, tt.wantStore, c.Store != nil)
			if tt.wantCache == nil {
				assert.Nil(t, c.Cache)
			} else {
				assert.IsType(t, tt.wantCache, c.Cache)
			}
			require.NotNil(t, c.Lookup)
			require.NotNil(t, c.Segmenter)

			record, err := c.Lookup.Lookup(context.Background(), "Acme")
			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, "Acme Limited", record.MatchedName)
		})
	}
}

func TestInitialize_Twice(t *testing.T) {
	c, err := NewContainer(testConfig(config.CacheBackendNone))
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))
	defer c.Close()

	assert.Error(t, c.Initialize(context.Background()))
}

func TestInitialize_UnknownProvider(t *testing.T) {
	cfg := testConfig(config.CacheBackendSQLite)
	cfg.RegistryProviders = []string{"dadata"}

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	err = c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize registry")
	assert.Empty(t, c.closers, "store opened before the failure is closed")
}

func TestClose_Idempotent(t *testing.T) {
	c, err := NewContainer(testConfig(config.CacheBackendMemory), WithBatchHistory())
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

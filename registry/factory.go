package registry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Имена провайдеров
const (
	ProviderOpenCorporates = "opencorporates"
	ProviderRefinitiv      = "refinitiv"
	ProviderMock           = "mock"
)

// FactoryConfig конфигурация реестров
type FactoryConfig struct {
	// Providers список провайдеров в порядке приоритета
	Providers      []string
	OpenCorporates OpenCorporatesConfig
	Refinitiv      RefinitivConfig

	// RetryAttempts число попыток запроса к провайдеру; 1 и меньше отключает повторы
	RetryAttempts int
	RetryDelay    time.Duration

	// CircuitBreaker включает предохранитель для каждого провайдера
	CircuitBreaker          bool
	CircuitFailureThreshold int
	CircuitTimeout          time.Duration

	// Cache кэш ответов; nil отключает кэширование
	Cache    Cache
	CacheTTL time.Duration
}

// ParseProviders разбирает список провайдеров вида "opencorporates,mock"
func ParseProviders(value string) []string {
	var providers []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			providers = append(providers, part)
		}
	}
	return providers
}

// NewLookup собирает реестр: провайдеры, повторы, предохранители, цепочка и кэш
func NewLookup(ctx context.Context, config FactoryConfig) (Lookup, error) {
	if len(config.Providers) == 0 {
		return nil, fmt.Errorf("no registry providers configured")
	}

	named := make([]NamedLookup, 0, len(config.Providers))
	for _, name := range config.Providers {
		provider, err := newProvider(ctx, name, config)
		if err != nil {
			return nil, err
		}
		if config.RetryAttempts > 1 && name != ProviderMock {
			provider = NewRetryLookup(provider, name, RetryConfig{
				MaxAttempts:  config.RetryAttempts,
				InitialDelay: config.RetryDelay,
			})
		}
		if config.CircuitBreaker && name != ProviderMock {
			breaker := NewCircuitBreaker(config.CircuitFailureThreshold, 2, config.CircuitTimeout)
			provider = NewCircuitBreakerLookup(provider, breaker)
		}
		named = append(named, NamedLookup{Name: name, Lookup: provider})
	}

	var lookup Lookup
	if len(named) == 1 {
		lookup = named[0].Lookup
	} else {
		lookup = NewChainLookup(named...)
	}

	if config.Cache != nil {
		lookup = NewCachedLookup(lookup, config.Cache, strings.Join(config.Providers, "+"), config.CacheTTL)
	}

	return lookup, nil
}

func newProvider(ctx context.Context, name string, config FactoryConfig) (Lookup, error) {
	switch name {
	case ProviderOpenCorporates:
		return NewOpenCorporatesClient(config.OpenCorporates), nil
	case ProviderRefinitiv:
		client, err := NewRefinitivClient(ctx, config.Refinitiv)
		if err != nil {
			return nil, fmt.Errorf("failed to create refinitiv client: %w", err)
		}
		return client, nil
	case ProviderMock:
		return NewMockLookup(), nil
	default:
		return nil, fmt.Errorf("unknown registry provider %q", name)
	}
}

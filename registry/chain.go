package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// NamedLookup реестр с именем для цепочки
type NamedLookup struct {
	Name   string
	Lookup Lookup
}

// ChainLookup опрашивает реестры по приоритету; первый ответ без ошибки (в том числе "не найдено") окончательный
type ChainLookup struct {
	providers []NamedLookup
	logger    *slog.Logger
}

// NewChainLookup создает цепочку в порядке приоритета
func NewChainLookup(providers ...NamedLookup) *ChainLookup {
	return &ChainLookup{
		providers: providers,
		logger:    slog.Default().With("component", "lookup_chain"),
	}
}

// Lookup возвращает ответ первого реестра, ответившего без ошибки.
// Если ошиблись все, возвращает объединение ошибок.
func (c *ChainLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	var record *Record
	err := c.each(func(provider NamedLookup) error {
		var err error
		record, err = provider.Lookup.Lookup(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LookupAll как Lookup, но запрашивает у каждого реестра до limit записей
func (c *ChainLookup) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	var records []Record
	err := c.each(func(provider NamedLookup) error {
		var err error
		records, err = lookupAll(ctx, provider.Lookup, name, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *ChainLookup) each(call func(provider NamedLookup) error) error {
	if len(c.providers) == 0 {
		return errors.New("lookup chain is empty")
	}

	var errs []error
	for _, provider := range c.providers {
		err := call(provider)
		if err == nil {
			return nil
		}
		c.logger.Warn("Registry provider failed, trying next",
			"provider", provider.Name,
			"error", err.Error())
		errs = append(errs, fmt.Errorf("%s: %w", provider.Name, err))
	}
	return errors.Join(errs...)
}

// MaxConcurrency наименьший бюджет среди участников цепочки
func (c *ChainLookup) MaxConcurrency() int {
	limit := 0
	for _, provider := range c.providers {
		n := maxConcurrencyOf(provider.Lookup)
		if limit == 0 || n < limit {
			limit = n
		}
	}
	if limit < 1 {
		return 1
	}
	return limit
}

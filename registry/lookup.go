package registry

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen провайдер временно отключен после серии ошибок
	ErrCircuitOpen = errors.New("registry circuit breaker is open")
	// ErrRateLimited провайдер ответил отказом по квоте
	ErrRateLimited = errors.New("registry rate limit exceeded")
)

// StatusError провайдер ответил неожиданным HTTP статусом
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Ключи структурированных полей записи реестра
const (
	FieldJurisdiction      = "jurisdiction"
	FieldCompanyNumber     = "company_number"
	FieldStatus            = "status"
	FieldIncorporationDate = "incorporation_date"
	FieldCompanyType       = "company_type"
	FieldSourceURL         = "source_url"
	FieldSource            = "source"
)

// FieldOrder порядок полей для экспорта
var FieldOrder = []string{
	FieldJurisdiction,
	FieldCompanyNumber,
	FieldStatus,
	FieldIncorporationDate,
	FieldCompanyType,
	FieldSourceURL,
	FieldSource,
}

// Record запись реестра, найденная по названию
type Record struct {
	MatchedName string             `json:"matched_name"`
	Fields      map[string]*string `json:"fields,omitempty"`
}

// Lookup поиск компании в реестре по названию.
// (nil, nil) означает, что запись не найдена; ошибка означает сбой запроса.
type Lookup interface {
	Lookup(ctx context.Context, name string) (*Record, error)
}

// MultiLookup реестр, умеющий вернуть несколько кандидатов на одно название
type MultiLookup interface {
	Lookup
	LookupAll(ctx context.Context, name string, limit int) ([]Record, error)
}

// ConcurrencyAdvertiser реестр, допускающий несколько параллельных запросов
type ConcurrencyAdvertiser interface {
	MaxConcurrency() int
}

// LookupFunc адаптер функции к интерфейсу Lookup
type LookupFunc func(ctx context.Context, name string) (*Record, error)

// Lookup вызывает f(ctx, name)
func (f LookupFunc) Lookup(ctx context.Context, name string) (*Record, error) {
	return f(ctx, name)
}

// lookupAll запрашивает до limit записей; реестр без множественного поиска отдает одну
func lookupAll(ctx context.Context, lookup Lookup, name string, limit int) ([]Record, error) {
	if multi, ok := lookup.(MultiLookup); ok && limit > 1 {
		return multi.LookupAll(ctx, name, limit)
	}
	record, err := lookup.Lookup(ctx, name)
	if err != nil || record == nil {
		return nil, err
	}
	return []Record{*record}, nil
}

// StringField возвращает указатель на непустую строку, для пустой nil
func StringField(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Clone глубокая копия записи
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := &Record{MatchedName: r.MatchedName}
	if r.Fields != nil {
		clone.Fields = make(map[string]*string, len(r.Fields))
		for k, v := range r.Fields {
			if v == nil {
				clone.Fields[k] = nil
				continue
			}
			value := *v
			clone.Fields[k] = &value
		}
	}
	return clone
}

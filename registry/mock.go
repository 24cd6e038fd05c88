package registry

import (
	"context"
	"strings"
	"time"
)

// MockLookup детерминированный реестр для демонстрации и тестов:
// на любое название возвращает "<название> Limited" с фиксированными реквизитами.
type MockLookup struct {
	// Delay имитирует задержку сети
	Delay time.Duration
}

// NewMockLookup создает мок реестра
func NewMockLookup() *MockLookup {
	return &MockLookup{}
}

// Lookup возвращает синтетическую запись; для пустого названия запись не найдена
func (m *MockLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &Record{
		MatchedName: name + " Limited",
		Fields: map[string]*string{
			FieldJurisdiction:      StringField("GB"),
			FieldCompanyNumber:     StringField("MOCK123456"),
			FieldStatus:            StringField("Active"),
			FieldIncorporationDate: StringField("2020-01-01"),
			FieldCompanyType:       StringField("Private Limited Company"),
			FieldSourceURL:         nil,
			FieldSource:            StringField("Mock Data"),
		},
	}, nil
}

// MaxConcurrency мок не ограничивает параллелизм
func (m *MockLookup) MaxConcurrency() int {
	return 64
}

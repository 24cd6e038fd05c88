package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"namematcher/normalization/algorithms"
)

// ErrInvalidConfig недопустимые параметры сопоставления
var ErrInvalidConfig = errors.New("invalid matching config")

const (
	DefaultMaxResultsPerName = 1
	MaxResultsPerNameLimit   = 10
	DefaultInterLookupDelay  = 500 * time.Millisecond
	DefaultWorkers           = 1
	DefaultLookupTimeout     = 30 * time.Second
)

// Config параметры пакетного сопоставления
type Config struct {
	// MinSimilarity порог подтверждения совпадения, 0-100
	MinSimilarity float64 `json:"min_similarity"`
	// MaxResultsPerName сколько записей реестра рассматривать на одно название
	MaxResultsPerName int `json:"max_results_per_name"`
	// InterLookupDelay минимальный интервал между запросами к реестру
	InterLookupDelay time.Duration `json:"inter_lookup_delay"`
	// Workers желаемое число параллельных запросов; ограничивается возможностями реестра
	Workers int `json:"workers"`
	// LookupTimeout таймаут одного запроса, 0 - без таймаута
	LookupTimeout time.Duration `json:"lookup_timeout"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		MinSimilarity:     algorithms.DefaultMinSimilarity,
		MaxResultsPerName: DefaultMaxResultsPerName,
		InterLookupDelay:  DefaultInterLookupDelay,
		Workers:           DefaultWorkers,
		LookupTimeout:     DefaultLookupTimeout,
	}
}

// Validate проверяет все параметры и возвращает одну ошибку со списком проблем
func (c Config) Validate() error {
	var problems []string

	if c.MinSimilarity < 0 || c.MinSimilarity > 100 {
		problems = append(problems, fmt.Sprintf("min_similarity must be between 0 and 100, got %v", c.MinSimilarity))
	}
	if c.MaxResultsPerName < 1 || c.MaxResultsPerName > MaxResultsPerNameLimit {
		problems = append(problems, fmt.Sprintf("max_results_per_name must be between 1 and %d, got %d", MaxResultsPerNameLimit, c.MaxResultsPerName))
	}
	if c.InterLookupDelay < 0 {
		problems = append(problems, fmt.Sprintf("inter_lookup_delay must not be negative, got %s", c.InterLookupDelay))
	}
	if c.Workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be positive, got %d", c.Workers))
	}
	if c.LookupTimeout < 0 {
		problems = append(problems, fmt.Sprintf("lookup_timeout must not be negative, got %s", c.LookupTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

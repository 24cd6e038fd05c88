package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultRetryAttempts количество попыток по умолчанию
	DefaultRetryAttempts = 3
	// DefaultRetryDelay задержка перед первым повтором
	DefaultRetryDelay = 200 * time.Millisecond
	// MaxRetryDelay верхняя граница задержки
	MaxRetryDelay = 2 * time.Second
)

// RetryConfig конфигурация повторов
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64 // множитель экспоненциальной задержки
}

// DefaultRetryConfig возвращает конфигурацию повторов по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultRetryAttempts,
		InitialDelay: DefaultRetryDelay,
		MaxDelay:     MaxRetryDelay,
		Multiplier:   2.0,
	}
}

// retryableMessages фрагменты сообщений транспортных ошибок
var retryableMessages = []string{
	"timeout",
	"connection reset",
	"connection refused",
	"temporary",
	"eof",
}

// IsRetryableError сообщает, имеет ли смысл повторить запрос к реестру
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// RetryLookup декоратор, повторяющий запрос при временных ошибках с экспоненциальной задержкой.
// Отмена или истечение контекста вызывающего прекращает повторы.
type RetryLookup struct {
	next   Lookup
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewRetryLookup оборачивает next повторами; нулевые поля config заменяются значениями по умолчанию
func NewRetryLookup(next Lookup, provider string, config RetryConfig) *RetryLookup {
	defaults := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = defaults.InitialDelay
	}
	if config.MaxDelay < config.InitialDelay {
		config.MaxDelay = max(defaults.MaxDelay, config.InitialDelay)
	}
	if config.Multiplier < 1 {
		config.Multiplier = defaults.Multiplier
	}
	return &RetryLookup{
		next:   next,
		config: config,
		sleep:  sleepContext,
		logger: slog.Default().With("component", "lookup_retry", "provider", provider),
	}
}

// Lookup выполняет запрос, повторяя его не более MaxAttempts раз
func (l *RetryLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	var record *Record
	err := l.do(ctx, name, func() error {
		var err error
		record, err = l.next.Lookup(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LookupAll повторяет множественный поиск по тем же правилам, что и Lookup
func (l *RetryLookup) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	var records []Record
	err := l.do(ctx, name, func() error {
		var err error
		records, err = lookupAll(ctx, l.next, name, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (l *RetryLookup) do(ctx context.Context, name string, call func() error) error {
	var lastErr error
	delay := l.config.InitialDelay

	for attempt := 1; attempt <= l.config.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			if attempt > 1 {
				l.logger.Info("Registry lookup succeeded after retry", "name", name, "attempt", attempt)
			}
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsRetryableError(err) {
			return err
		}
		if attempt == l.config.MaxAttempts {
			break
		}

		l.logger.Warn("Registry lookup failed, retrying",
			"name", name,
			"attempt", attempt,
			"max_attempts", l.config.MaxAttempts,
			"delay", delay.String(),
			"error", err.Error())

		if err := l.sleep(ctx, delay); err != nil {
			return lastErr
		}
		delay = time.Duration(float64(delay) * l.config.Multiplier)
		if delay > l.config.MaxDelay {
			delay = l.config.MaxDelay
		}
	}

	return fmt.Errorf("lookup %q failed after %d attempts: %w", name, l.config.MaxAttempts, lastErr)
}

// MaxConcurrency наследует бюджет обернутого реестра
func (l *RetryLookup) MaxConcurrency() int {
	return maxConcurrencyOf(l.next)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

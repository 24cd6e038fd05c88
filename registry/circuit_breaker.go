package registry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CircuitState состояние предохранителя
type CircuitState int

const (
	StateClosed   CircuitState = iota // нормальная работа
	StateOpen                         // запросы блокируются
	StateHalfOpen                     // пробные запросы
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker защита реестра от каскадных сбоев
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	lastFailureTime  time.Time
	now              func() time.Time
}

// NewCircuitBreaker создает предохранитель: открывается после failureThreshold ошибок подряд,
// через timeout пропускает пробные запросы, закрывается после successThreshold успехов.
func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		now:              time.Now,
	}
}

// CanProceed сообщает, можно ли выполнить запрос, и переводит open в half-open по таймауту
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.timeout {
			cb.state = StateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess учитывает успешный запрос
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

// RecordFailure учитывает ошибку
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.failureCount = cb.failureThreshold
		cb.successCount = 0
	}
}

// State текущее состояние
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CircuitBreakerLookup декоратор, отклоняющий запросы с ErrCircuitOpen, пока предохранитель открыт.
// "Не найдено" считается успехом.
type CircuitBreakerLookup struct {
	next    Lookup
	breaker *CircuitBreaker
}

// NewCircuitBreakerLookup оборачивает next предохранителем
func NewCircuitBreakerLookup(next Lookup, breaker *CircuitBreaker) *CircuitBreakerLookup {
	return &CircuitBreakerLookup{next: next, breaker: breaker}
}

// Lookup выполняет запрос через предохранитель
func (l *CircuitBreakerLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	if !l.breaker.CanProceed() {
		return nil, fmt.Errorf("lookup %q rejected: %w", name, ErrCircuitOpen)
	}

	record, err := l.next.Lookup(ctx, name)
	if err != nil {
		l.breaker.RecordFailure()
		return nil, err
	}
	l.breaker.RecordSuccess()
	return record, nil
}

// LookupAll выполняет множественный поиск через предохранитель
func (l *CircuitBreakerLookup) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	if !l.breaker.CanProceed() {
		return nil, fmt.Errorf("lookup %q rejected: %w", name, ErrCircuitOpen)
	}

	records, err := lookupAll(ctx, l.next, name, limit)
	if err != nil {
		l.breaker.RecordFailure()
		return nil, err
	}
	l.breaker.RecordSuccess()
	return records, nil
}

// MaxConcurrency наследует бюджет обернутого реестра
func (l *CircuitBreakerLookup) MaxConcurrency() int {
	return maxConcurrencyOf(l.next)
}

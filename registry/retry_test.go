package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyLookup отвечает ошибками из очереди, затем записью
type flakyLookup struct {
	calls  int32
	errs   []error
	record *Record
}

func (f *flakyLookup) Lookup(_ context.Context, _ string) (*Record, error) {
	n := int(atomic.AddInt32(&f.calls, 1))
	if n <= len(f.errs) {
		return nil, f.errs[n-1]
	}
	return f.record.Clone(), nil
}

func (f *flakyLookup) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newTestRetryLookup(next Lookup, attempts int) (*RetryLookup, *[]time.Duration) {
	var delays []time.Duration
	l := NewRetryLookup(next, "test", RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   2,
	})
	l.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return l, &delays
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", fmt.Errorf("search: %w", ErrRateLimited), true},
		{"server error", &StatusError{Provider: "opencorporates", StatusCode: http.StatusBadGateway}, true},
		{"client error", &StatusError{Provider: "opencorporates", StatusCode: http.StatusUnauthorized}, false},
		{"circuit open", fmt.Errorf("lookup: %w", ErrCircuitOpen), false},
		{"cancelled", context.Canceled, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"decode error", errors.New("failed to decode response: invalid character"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}

func TestRetryLookup_SucceedsAfterTransientErrors(t *testing.T) {
	next := &flakyLookup{
		errs: []error{
			&StatusError{Provider: "test", StatusCode: http.StatusServiceUnavailable},
			ErrRateLimited,
			ErrRateLimited,
		},
		record: &Record{MatchedName: "Acme Ltd"},
	}
	lookup, delays := newTestRetryLookup(next, 4)

	record, err := lookup.Lookup(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", record.MatchedName)
	assert.Equal(t, 4, next.Calls())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}, *delays)
}

func TestRetryLookup_GivesUpAfterMaxAttempts(t *testing.T) {
	next := &flakyLookup{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	lookup, delays := newTestRetryLookup(next, 3)

	_, err := lookup.Lookup(context.Background(), "acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, next.Calls())
	assert.Len(t, *delays, 2)
}

func TestRetryLookup_NonRetryableErrorReturnsImmediately(t *testing.T) {
	statusErr := &StatusError{Provider: "test", StatusCode: http.StatusForbidden, Body: "denied"}
	next := &flakyLookup{errs: []error{statusErr}}
	lookup, delays := newTestRetryLookup(next, 3)

	_, err := lookup.Lookup(context.Background(), "acme")
	assert.Equal(t, statusErr, err)
	assert.Equal(t, "test returned status 403: denied", err.Error())
	assert.Equal(t, 1, next.Calls())
	assert.Empty(t, *delays)
}

func TestRetryLookup_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := &flakyLookup{errs: []error{ErrRateLimited, ErrRateLimited}}
	lookup, _ := newTestRetryLookup(next, 5)
	lookup.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := lookup.Lookup(ctx, "acme")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, next.Calls())
}

func TestNewRetryLookup_Defaults(t *testing.T) {
	lookup := NewRetryLookup(&countingLookup{limit: 3}, "test", RetryConfig{})

	assert.Equal(t, DefaultRetryConfig(), lookup.config)
	assert.Equal(t, 3, lookup.MaxConcurrency())
}

func TestRetryLookup_LookupAllRetriesTransientErrors(t *testing.T) {
	next := &flakyLookup{
		errs:   []error{ErrRateLimited},
		record: &Record{MatchedName: "Acme Ltd"},
	}
	lookup, delays := newTestRetryLookup(next, 3)

	records, err := lookup.LookupAll(context.Background(), "acme", 3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Ltd", records[0].MatchedName)
	assert.Equal(t, 2, next.Calls())
	assert.Len(t, *delays, 1)
}

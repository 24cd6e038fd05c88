package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"namematcher/extractors"
	"namematcher/normalization"
	"namematcher/normalization/algorithms"
	"namematcher/registry"
)

// Outcome чем закончилось сопоставление названия
type Outcome string

const (
	OutcomeMatched        Outcome = "matched"
	OutcomeBelowThreshold Outcome = "below_threshold"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeLookupFailed   Outcome = "lookup_failed"
	OutcomeSkipped        Outcome = "skipped"
)

// MatchResult результат для одного вхождения названия.
// MatchedName и Score либо оба заданы, либо оба nil.
type MatchResult struct {
	Candidate      extractors.EntityCandidate `json:"candidate"`
	MatchedName    *string                    `json:"matched_name"`
	Score          *float64                   `json:"score"`
	RegistryFields map[string]*string         `json:"registry_fields,omitempty"`
	Outcome        Outcome                    `json:"outcome"`
	Error          string                     `json:"error,omitempty"`
	AddressSuspect bool                       `json:"address_suspect,omitempty"`
}

// Summary статистика пакета.
// Matched, BelowThreshold, NotFound, Failed и Skipped считаются по вхождениям,
// Lookups и LookupFailures по уникальным названиям.
type Summary struct {
	TotalOccurrences int           `json:"total_occurrences"`
	UniqueKeys       int           `json:"unique_keys"`
	Lookups          int           `json:"lookups"`
	LookupFailures   int           `json:"lookup_failures"`
	Matched          int           `json:"matched"`
	BelowThreshold   int           `json:"below_threshold"`
	NotFound         int           `json:"not_found"`
	Failed           int           `json:"failed"`
	Skipped          int           `json:"skipped"`
	MatchRate        float64       `json:"match_rate"`
	Cancelled        bool          `json:"cancelled"`
	Duration         time.Duration `json:"duration"`
}

// BatchResult результаты и статистика одного запуска
type BatchResult struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Config    Config        `json:"config"`
	Results   []MatchResult `json:"results"`
	Summary   Summary       `json:"summary"`
}

// ProgressFunc получает число обработанных уникальных названий и их общее число.
// Вызовы сериализованы, processed не убывает.
type ProgressFunc func(processed, total int)

// Aggregator сопоставляет кандидатов с реестром: один запрос на уникальное название,
// результат размножается на все вхождения.
type Aggregator struct {
	lookup   registry.Lookup
	config   Config
	logger   *slog.Logger
	progress ProgressFunc
}

// Option настройка Aggregator
type Option func(*Aggregator)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithProgress задает обработчик прогресса
func WithProgress(fn ProgressFunc) Option {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// NewAggregator создает агрегатор; конфигурация проверяется до начала работы
func NewAggregator(lookup registry.Lookup, config Config, opts ...Option) (*Aggregator, error) {
	if lookup == nil {
		return nil, fmt.Errorf("%w: registry lookup is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Aggregator{
		lookup: lookup,
		config: config,
		logger: slog.Default().With("component", "matching"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// keyGroup уникальное название и индексы его вхождений
type keyGroup struct {
	key         string
	query       string
	occurrences []int
}

// keyOutcome общий результат для всех вхождений ключа
type keyOutcome struct {
	outcome     Outcome
	matchedName *string
	score       *float64
	fields      map[string]*string
	err         string
}

// Concurrency фактическое число параллельных запросов:
// без объявленного реестром бюджета запросы идут строго по одному.
func (a *Aggregator) Concurrency() int {
	advertiser, ok := a.lookup.(registry.ConcurrencyAdvertiser)
	if !ok || advertiser.MaxConcurrency() < 1 {
		return 1
	}
	return min(a.config.Workers, advertiser.MaxConcurrency())
}

// Run сопоставляет кандидатов. Ошибка запроса для одного названия не прерывает пакет.
// При отмене контекста новые запросы не выдаются, незапрошенные названия помечаются skipped,
// результат возвращается без ошибки с Summary.Cancelled.
func (a *Aggregator) Run(ctx context.Context, candidates []extractors.EntityCandidate) (*BatchResult, error) {
	startTime := time.Now()
	batch := &BatchResult{
		ID:        uuid.NewString(),
		StartedAt: startTime,
		Config:    a.config,
	}

	groups := groupCandidates(candidates)
	outcomes := make([]keyOutcome, len(groups))
	for i := range outcomes {
		outcomes[i] = keyOutcome{outcome: OutcomeSkipped}
	}

	workers := a.Concurrency()
	a.logger.Info("Starting batch matching",
		"batch_id", batch.ID,
		"occurrences", len(candidates),
		"unique_keys", len(groups),
		"workers", workers)

	var limiter *rate.Limiter
	if a.config.InterLookupDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(a.config.InterLookupDelay), 1)
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed int
		issued    int
		cancelled bool
	)
	semaphore := make(chan struct{}, workers)

dispatch:
	for i, group := range groups {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		default:
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				cancelled = true
				break dispatch
			}
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			cancelled = true
			break dispatch
		}
		if ctx.Err() != nil {
			<-semaphore
			cancelled = true
			break dispatch
		}

		issued++
		wg.Add(1)
		go func(index int, group keyGroup) {
			defer func() {
				if rec := recover(); rec != nil {
					a.logger.Error("Panic in registry lookup",
						"key", group.key,
						"recovered", rec)
					outcomes[index] = keyOutcome{
						outcome: OutcomeLookupFailed,
						err:     fmt.Sprintf("panic during lookup: %v", rec),
					}
				}

				mu.Lock()
				processed++
				if a.progress != nil {
					a.progress(processed, len(groups))
				}
				mu.Unlock()

				wg.Done()
				<-semaphore
			}()

			outcomes[index] = a.resolve(ctx, group)
		}(i, group)
	}

	wg.Wait()

	if cancelled {
		a.logger.Info("Batch matching cancelled",
			"batch_id", batch.ID,
			"issued", issued,
			"unique_keys", len(groups))
	}

	batch.Results = expand(candidates, groups, outcomes)
	batch.Summary = summarize(batch.Results, outcomes, issued, cancelled, time.Since(startTime))

	a.logger.Info("Batch matching completed",
		"batch_id", batch.ID,
		"matched", batch.Summary.Matched,
		"lookup_failures", batch.Summary.LookupFailures,
		"skipped", batch.Summary.Skipped,
		"duration_ms", batch.Summary.Duration.Milliseconds())

	return batch, nil
}

// resolve выполняет запрос для одного ключа. Уже начатый запрос не прерывается отменой пакета,
// его ограничивает только LookupTimeout.
func (a *Aggregator) resolve(ctx context.Context, group keyGroup) keyOutcome {
	lookupCtx := context.WithoutCancel(ctx)
	if a.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(lookupCtx, a.config.LookupTimeout)
		defer cancel()
	}

	records, err := a.fetch(lookupCtx, group.query)
	if err != nil {
		a.logger.Warn("Registry lookup failed",
			"key", group.key,
			"error", err.Error())
		return keyOutcome{outcome: OutcomeLookupFailed, err: err.Error()}
	}

	var (
		best      *registry.Record
		bestScore float64
	)
	for i := range records {
		if strings.TrimSpace(records[i].MatchedName) == "" {
			continue
		}
		score := algorithms.Score(group.key, records[i].MatchedName)
		if best == nil || score > bestScore {
			best = &records[i]
			bestScore = score
		}
	}

	if best == nil {
		return keyOutcome{outcome: OutcomeNotFound}
	}
	if bestScore < a.config.MinSimilarity {
		a.logger.Debug("Registry record below threshold",
			"key", group.key,
			"matched_name", best.MatchedName,
			"score", bestScore)
		return keyOutcome{outcome: OutcomeBelowThreshold}
	}

	name := best.MatchedName
	return keyOutcome{
		outcome:     OutcomeMatched,
		matchedName: &name,
		score:       &bestScore,
		fields:      best.Clone().Fields,
	}
}

func (a *Aggregator) fetch(ctx context.Context, query string) ([]registry.Record, error) {
	if a.config.MaxResultsPerName > 1 {
		if multi, ok := a.lookup.(registry.MultiLookup); ok {
			return multi.LookupAll(ctx, query, a.config.MaxResultsPerName)
		}
	}

	record, err := a.lookup.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return []registry.Record{*record}, nil
}

// groupCandidates группирует по тексту без учета регистра в порядке первого появления
func groupCandidates(candidates []extractors.EntityCandidate) []keyGroup {
	index := make(map[string]int)
	var groups []keyGroup

	for i, candidate := range candidates {
		key := strings.ToLower(strings.TrimSpace(candidate.Text))
		pos, ok := index[key]
		if !ok {
			query := normalization.PreprocessForAPI(candidate.Text)
			if query == "" {
				query = strings.TrimSpace(candidate.Text)
			}
			pos = len(groups)
			index[key] = pos
			groups = append(groups, keyGroup{key: key, query: query})
		}
		groups[pos].occurrences = append(groups[pos].occurrences, i)
	}
	return groups
}

// expand создает по результату на каждое вхождение в исходном порядке
func expand(candidates []extractors.EntityCandidate, groups []keyGroup, outcomes []keyOutcome) []MatchResult {
	results := make([]MatchResult, len(candidates))
	for g, group := range groups {
		shared := outcomes[g]
		for _, idx := range group.occurrences {
			result := MatchResult{
				Candidate:      candidates[idx],
				Outcome:        shared.outcome,
				Error:          shared.err,
				AddressSuspect: normalization.DetectAddressContamination(candidates[idx].Text),
			}
			if shared.outcome == OutcomeMatched {
				name := *shared.matchedName
				score := *shared.score
				result.MatchedName = &name
				result.Score = &score
				result.RegistryFields = copyFields(shared.fields)
			}
			results[idx] = result
		}
	}
	return results
}

func summarize(results []MatchResult, outcomes []keyOutcome, issued int, cancelled bool, duration time.Duration) Summary {
	summary := Summary{
		TotalOccurrences: len(results),
		UniqueKeys:       len(outcomes),
		Lookups:          issued,
		Cancelled:        cancelled,
		Duration:         duration,
	}

	for _, outcome := range outcomes {
		if outcome.outcome == OutcomeLookupFailed {
			summary.LookupFailures++
		}
	}

	for _, result := range results {
		switch result.Outcome {
		case OutcomeMatched:
			summary.Matched++
		case OutcomeBelowThreshold:
			summary.BelowThreshold++
		case OutcomeNotFound:
			summary.NotFound++
		case OutcomeLookupFailed:
			summary.Failed++
		case OutcomeSkipped:
			summary.Skipped++
		}
	}

	if summary.TotalOccurrences > 0 {
		summary.MatchRate = math.Round(float64(summary.Matched)/float64(summary.TotalOccurrences)*10000) / 100
	}
	return summary
}

func copyFields(fields map[string]*string) map[string]*string {
	if fields == nil {
		return nil
	}
	out := make(map[string]*string, len(fields))
	for k, v := range fields {
		if v == nil {
			out[k] = nil
			continue
		}
		value := *v
		out[k] = &value
	}
	return out
}

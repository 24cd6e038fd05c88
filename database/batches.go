package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"namematcher/matching"
)

// ErrBatchNotFound пакет с таким ID не сохранялся
var ErrBatchNotFound = errors.New("batch not found")

// BatchInfo краткие сведения о пакете для списка
type BatchInfo struct {
	ID               string           `json:"id"`
	StartedAt        time.Time        `json:"started_at"`
	TotalOccurrences int              `json:"total_occurrences"`
	Matched          int              `json:"matched"`
	MatchRate        float64          `json:"match_rate"`
	Cancelled        bool             `json:"cancelled"`
	Summary          matching.Summary `json:"summary"`
}

// SaveBatch сохраняет пакет целиком в одной транзакции; повторное сохранение заменяет результаты
func (s *Store) SaveBatch(ctx context.Context, batch *matching.BatchResult) error {
	if batch == nil || batch.ID == "" {
		return fmt.Errorf("batch id is required")
	}

	configJSON, err := json.Marshal(batch.Config)
	if err != nil {
		return fmt.Errorf("failed to encode batch config: %w", err)
	}
	summaryJSON, err := json.Marshal(batch.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode batch summary: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, started_at, config_json, summary_json, total_occurrences, matched, match_rate, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			config_json = excluded.config_json,
			summary_json = excluded.summary_json,
			total_occurrences = excluded.total_occurrences,
			matched = excluded.matched,
			match_rate = excluded.match_rate,
			cancelled = excluded.cancelled
	`, batch.ID, batch.StartedAt.UTC(), string(configJSON), string(summaryJSON),
		batch.Summary.TotalOccurrences, batch.Summary.Matched, batch.Summary.MatchRate, batch.Summary.Cancelled)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_results WHERE batch_id = ?`, batch.ID); err != nil {
		return fmt.Errorf("failed to clear batch results: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO batch_results (batch_id, position, result_json) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, result := range batch.Results {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode result %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, batch.ID, i, string(data)); err != nil {
			return fmt.Errorf("failed to save result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	s.logger.Debug("Batch saved", "batch_id", batch.ID, "results", len(batch.Results))
	return nil
}

// GetBatch загружает пакет с результатами в исходном порядке
func (s *Store) GetBatch(ctx context.Context, id string) (*matching.BatchResult, error) {
	var (
		startedAt   time.Time
		configJSON  string
		summaryJSON string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT started_at, config_json, summary_json FROM batches WHERE id = ?`, id,
	).Scan(&startedAt, &configJSON, &summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}

	batch := &matching.BatchResult{ID: id, StartedAt: startedAt}
	if err := json.Unmarshal([]byte(configJSON), &batch.Config); err != nil {
		return nil, fmt.Errorf("failed to decode batch config: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &batch.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode batch summary: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT result_json FROM batch_results WHERE batch_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch results: %w", err)
	}
	defer rows.Close()

	batch.Results = make([]matching.MatchResult, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan batch result: %w", err)
		}
		var result matching.MatchResult
		if err := json.Unmarshal([]byte(data), &result); err != nil {
			return nil, fmt.Errorf("failed to decode batch result: %w", err)
		}
		batch.Results = append(batch.Results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch results: %w", err)
	}

	return batch, nil
}

// ListBatches возвращает пакеты от новых к старым
func (s *Store) ListBatches(ctx context.Context, limit, offset int) ([]BatchInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, started_at, summary_json, total_occurrences, matched, match_rate, cancelled
		FROM batches
		ORDER BY started_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	batches := make([]BatchInfo, 0)
	for rows.Next() {
		var (
			info        BatchInfo
			summaryJSON string
		)
		if err := rows.Scan(&info.ID, &info.StartedAt, &summaryJSON,
			&info.TotalOccurrences, &info.Matched, &info.MatchRate, &info.Cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &info.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode batch summary: %w", err)
		}
		batches = append(batches, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}
	return batches, nil
}

// DeleteBatch удаляет пакет и его результаты
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_results WHERE batch_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete batch results: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted batch: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return tx.Commit()
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"namematcher/registry"
)

// defaultLookupCacheTTL срок хранения, если TTL не задан
const defaultLookupCacheTTL = 24 * time.Hour

// Get реализует registry.Cache: просроченные записи считаются отсутствующими
func (s *Store) Get(ctx context.Context, key string) (*registry.Record, bool, error) {
	var (
		found      bool
		recordJSON sql.NullString
		expiresAt  time.Time
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT found, record_json, expires_at FROM lookup_cache WHERE cache_key = ?`, key,
	).Scan(&found, &recordJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read lookup cache: %w", err)
	}

	if s.now().After(expiresAt) {
		return nil, false, nil
	}
	if !found || !recordJSON.Valid {
		return nil, true, nil
	}

	var record registry.Record
	if err := json.Unmarshal([]byte(recordJSON.String), &record); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached record: %w", err)
	}
	return &record, true, nil
}

// Set реализует registry.Cache; record == nil сохраняет ответ "не найдено"
func (s *Store) Set(ctx context.Context, key string, record *registry.Record, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultLookupCacheTTL
	}

	var recordJSON sql.NullString
	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		recordJSON = sql.NullString{String: string(data), Valid: true}
	}

	now := s.now().UTC()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO lookup_cache (cache_key, found, record_json, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			found = excluded.found,
			record_json = excluded.record_json,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, key, record != nil, recordJSON, now.Add(ttl), now)
	if err != nil {
		return fmt.Errorf("failed to write lookup cache: %w", err)
	}
	return nil
}

// PurgeExpiredLookups удаляет просроченные записи кэша
func (s *Store) PurgeExpiredLookups(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM lookup_cache WHERE expires_at < ?`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge lookup cache: %w", err)
	}
	return result.RowsAffected()
}
